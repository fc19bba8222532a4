package handler

import (
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// HistoryHandler serves the persisted run history and audit log.
type HistoryHandler struct {
	runs   domain.RunStore
	audit  domain.AuditStore
	logger *slog.Logger
}

// NewHistoryHandler creates a HistoryHandler. Either store may be nil, in
// which case its endpoint answers 404.
func NewHistoryHandler(runs domain.RunStore, audit domain.AuditStore, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{runs: runs, audit: audit, logger: logger}
}

// ListRuns responds with the most recent pass summaries.
// GET /api/runs?limit=
func (h *HistoryHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		writeError(w, http.StatusNotFound, "run history is not enabled")
		return
	}
	runs, err := h.runs.ListRecent(r.Context(), parseLimit(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list runs", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []domain.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// ListAudit responds with audit log entries, newest first.
// GET /api/audit?limit=&offset=
func (h *HistoryHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		writeError(w, http.StatusNotFound, "audit log is not enabled")
		return
	}
	entries, err := h.audit.List(r.Context(), parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list audit", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list audit log")
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
