package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// Recorder persists finished run reports: a summary row in the run history,
// an audit entry and a full copy in cold storage. Each sink is optional.
type Recorder struct {
	runs     domain.RunStore
	audit    domain.AuditStore
	archiver domain.ReportArchiver
	logger   *slog.Logger
}

// NewRecorder creates a new Recorder. Any of the sinks may be nil.
func NewRecorder(runs domain.RunStore, audit domain.AuditStore, archiver domain.ReportArchiver, logger *slog.Logger) *Recorder {
	return &Recorder{
		runs:     runs,
		audit:    audit,
		archiver: archiver,
		logger:   logger,
	}
}

// Record writes report to every configured sink. A failing sink does not
// prevent the others from being written; all failures are returned joined.
func (r *Recorder) Record(ctx context.Context, report domain.RunReport) error {
	var errs []error

	if r.runs != nil {
		if err := r.runs.Insert(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("inserting run %s: %w", report.ID, err))
		}
	}

	detail := map[string]any{
		"run_id":       report.ID,
		"items":        report.Items,
		"offers":       len(report.Offers),
		"missing":      len(report.Missing),
		"failures":     len(report.Failures),
		"dropped":      report.Dropped,
		"incomparable": report.Incomparable,
	}

	if r.archiver != nil {
		key, err := r.archiver.ArchiveReport(ctx, report)
		if err != nil {
			errs = append(errs, fmt.Errorf("archiving run %s: %w", report.ID, err))
		} else {
			detail["archive_key"] = key
			r.logger.InfoContext(ctx, "archived run report",
				slog.String("run_id", report.ID),
				slog.String("key", key),
			)
		}
	}

	if r.audit != nil {
		if err := r.audit.Log(ctx, "run.completed", detail); err != nil {
			errs = append(errs, fmt.Errorf("auditing run %s: %w", report.ID, err))
		}
	}

	return errors.Join(errs...)
}
