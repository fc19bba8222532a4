package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// Triggerer schedules an extra checker pass.
type Triggerer interface {
	Trigger() bool
}

// CheckHandler serves the manual check trigger.
type CheckHandler struct {
	checker Triggerer
	logger  *slog.Logger
}

// NewCheckHandler creates a CheckHandler.
func NewCheckHandler(checker Triggerer, logger *slog.Logger) *CheckHandler {
	return &CheckHandler{checker: checker, logger: logger}
}

// TriggerCheck enqueues one pass. A request made while another is still
// pending is accepted but not queued twice.
// POST /api/check
func (h *CheckHandler) TriggerCheck(w http.ResponseWriter, r *http.Request) {
	queued := h.checker.Trigger()
	h.logger.InfoContext(r.Context(), "handler: check requested", slog.Bool("queued", queued))

	msg := "check enqueued"
	if !queued {
		msg = "check already pending"
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":       "accepted",
		"queued":       queued,
		"message":      msg,
		"requested_at": time.Now().UTC().Format(time.RFC3339),
	})
}
