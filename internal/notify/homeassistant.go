package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HomeAssistantSender delivers notifications to a mobile device registered
// with Home Assistant through the notify.mobile_app_<device> service.
type HomeAssistantSender struct {
	baseURL string
	token   string
	device  string
	client  *http.Client
}

// NewHomeAssistantSender creates a HomeAssistantSender. token is a long-lived
// access token.
func NewHomeAssistantSender(baseURL, token, device string) *HomeAssistantSender {
	return &HomeAssistantSender{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		device:  device,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type haNotifyData struct {
	NotificationIcon string `json:"notification_icon"`
	Group            string `json:"group"`
	Color            string `json:"color"`
	ClickAction      string `json:"clickAction,omitempty"`
}

type haNotifyPayload struct {
	Title   string       `json:"title"`
	Message string       `json:"message"`
	Data    haNotifyData `json:"data"`
}

// Send calls the notify service. Tapping the notification opens msg.URL.
func (h *HomeAssistantSender) Send(ctx context.Context, msg Message) error {
	url := fmt.Sprintf("%s/api/services/notify/mobile_app_%s", h.baseURL, h.device)

	body, err := json.Marshal(haNotifyPayload{
		Title:   msg.Title,
		Message: msg.Body,
		Data: haNotifyData{
			NotificationIcon: "mdi:album",
			Group:            "Discogs Wantlist Watcher",
			Color:            "black",
			ClickAction:      msg.URL,
		},
	})
	if err != nil {
		return fmt.Errorf("homeassistant: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("homeassistant: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("homeassistant: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("homeassistant: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Name returns the sender identifier.
func (h *HomeAssistantSender) Name() string {
	return "homeassistant"
}
