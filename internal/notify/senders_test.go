package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHomeAssistantSender(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		got     haNotifyPayload
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
	}))
	defer srv.Close()

	s := NewHomeAssistantSender(srv.URL+"/", "ll-token", "pixel")
	err := s.Send(context.Background(), Message{Title: "T", Body: "B", URL: "https://web.test/release/1"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/api/services/notify/mobile_app_pixel" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer ll-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if got.Title != "T" || got.Message != "B" || got.Data.ClickAction != "https://web.test/release/1" || got.Data.NotificationIcon != "mdi:album" {
		t.Errorf("payload = %+v", got)
	}
}

func TestTelegramSender(t *testing.T) {
	var payload map[string]string
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}))
	defer srv.Close()

	s := NewTelegramSender("bot-token", "42")
	s.apiURL = srv.URL
	if err := s.Send(context.Background(), Message{Title: "A & B", Body: "price <€5>", URL: "https://x.test"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/botbot-token/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if payload["chat_id"] != "42" || !strings.Contains(payload["text"], "<b>A &amp; B</b>") || !strings.Contains(payload["text"], "price &lt;€5&gt;") {
		t.Errorf("payload = %v", payload)
	}
}

func TestSendersReportStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tg := NewTelegramSender("t", "c")
	tg.apiURL = srv.URL
	senders := []Sender{NewDiscordSender(srv.URL), NewHomeAssistantSender(srv.URL, "t", "d"), tg}
	for _, s := range senders {
		err := s.Send(context.Background(), Message{Title: "x"})
		if err == nil || !strings.Contains(err.Error(), "500") {
			t.Errorf("%s: error = %v; want status 500", s.Name(), err)
		}
	}
}
