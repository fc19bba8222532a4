package handler

import (
	"net/http"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// ReportSource exposes the last completed pass.
type ReportSource interface {
	LastReport() (domain.RunReport, bool)
}

// StatusHandler serves the outcome of the most recent pass.
type StatusHandler struct {
	mode    string
	reports ReportSource
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(mode string, reports ReportSource) *StatusHandler {
	return &StatusHandler{mode: mode, reports: reports}
}

// GetStatus responds with the mode and the last run summary, its offers and
// the items still lacking a ceiling.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	report, ok := h.reports.LastReport()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"mode":     h.mode,
			"last_run": nil,
		})
		return
	}

	missing := make([]string, 0, len(report.Missing))
	for _, it := range report.Missing {
		missing = append(missing, it.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":     h.mode,
		"last_run": report.Summary(),
		"offers":   report.Offers,
		"missing":  missing,
		"failures": report.Failures,
	})
}
