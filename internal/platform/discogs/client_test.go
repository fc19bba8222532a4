package discogs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClientWantlistPaginates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Discogs token=secret" {
			t.Errorf("Authorization = %q", got)
		}
		switch r.URL.Path {
		case "/oauth/identity":
			fmt.Fprint(w, `{"id":1,"username":"digger"}`)
		case "/users/digger/wants":
			page := r.URL.Query().Get("page")
			switch page {
			case "1":
				fmt.Fprint(w, `{"pagination":{"page":1,"pages":2},"wants":[
					{"id":10,"notes":"max price: €20.00","basic_information":{"id":10,"master_id":5,"title":"First","artists":[{"name":"Band"}]}},
					{"id":11,"notes":"","basic_information":{"id":11,"master_id":5,"title":"First (reissue)","artists":[{"name":"Band"}]}}]}`)
			case "2":
				fmt.Fprint(w, `{"pagination":{"page":2,"pages":2},"wants":[
					{"id":12,"notes":"","basic_information":{"id":12,"master_id":0,"title":"Single","artists":[]}}]}`)
			default:
				t.Errorf("unexpected page %q", page)
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{APIURL: srv.URL, WebURL: "https://web.test", Token: "secret"}, discardLogger())
	items, err := c.Wantlist(context.Background())
	if err != nil {
		t.Fatalf("Wantlist: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Wantlist returned %d items; want 3", len(items))
	}
	if items[0].MasterID != 5 || items[0].Notes != "max price: €20.00" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[2].GroupID() != 12 {
		t.Errorf("items[2].GroupID() = %d; want 12", items[2].GroupID())
	}
	if items[1].Release.URL != "https://web.test/release/11" {
		t.Errorf("release url = %q", items[1].Release.URL)
	}
}

func TestClientSetNotes(t *testing.T) {
	var gotPath, gotNotes string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s; want POST", r.Method)
		}
		gotPath = r.URL.Path
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		gotNotes = body["notes"]
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{APIURL: srv.URL, Username: "digger"}, discardLogger())
	item := domain.WantlistItem{ID: 42, ReleaseID: 42}
	if err := c.SetNotes(context.Background(), item, "max price: €12.50"); err != nil {
		t.Fatalf("SetNotes: %v", err)
	}
	if gotPath != "/users/digger/wants/42" {
		t.Errorf("path = %q", gotPath)
	}
	if gotNotes != "max price: €12.50" {
		t.Errorf("notes = %q", gotNotes)
	}
}

func TestClientRelease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":7,"title":"LP","artists":[{"name":"A"},{"name":"B"}],
			"uri":"https://web.test/release/7-LP",
			"tracklist":[{"position":"","title":"Side A","type_":"heading"},{"position":"A1","title":"Intro","type_":"track"}]}`)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{APIURL: srv.URL}, discardLogger())
	rel, err := c.Release(context.Background(), 7)
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if rel.ArtistNames() != "A, B" {
		t.Errorf("ArtistNames() = %q", rel.ArtistNames())
	}
	if rel.TracklistString() != "A1 Intro" {
		t.Errorf("TracklistString() = %q", rel.TracklistString())
	}
	if rel.URL != "https://web.test/release/7-LP" {
		t.Errorf("URL = %q", rel.URL)
	}
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		c := NewClient(ClientConfig{APIURL: srv.URL}, discardLogger())
		_, err := c.Release(context.Background(), 1)
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: error = %v; want %v", tt.status, err, tt.want)
		}
		srv.Close()
	}
}
