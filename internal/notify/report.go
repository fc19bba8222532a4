package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// ReportNotifier turns a run report into notifications: one per good offer
// and one summary of the items that still lack a ceiling.
type ReportNotifier struct {
	notifier *Notifier
	stats    domain.StatsFetcher
	logger   *slog.Logger
}

// NewReportNotifier creates a ReportNotifier. stats may be nil.
func NewReportNotifier(notifier *Notifier, stats domain.StatsFetcher, logger *slog.Logger) *ReportNotifier {
	return &ReportNotifier{
		notifier: notifier,
		stats:    stats,
		logger:   logger,
	}
}

// NotifyReport sends the notifications of report. Every message is attempted;
// failures are returned joined.
func (r *ReportNotifier) NotifyReport(ctx context.Context, report domain.RunReport) error {
	var errs []error

	for _, o := range report.Offers {
		msg := OfferMessage(o, StatsText(ctx, r.stats, o.Item))
		if err := r.notifier.Notify(ctx, EventOffer, msg); err != nil {
			errs = append(errs, err)
		}
	}

	if len(report.Missing) > 0 {
		if err := r.notifier.Notify(ctx, EventMissing, MissingMessage(report.Missing)); err != nil {
			errs = append(errs, err)
		}
	}

	r.logger.InfoContext(ctx, "report notifications sent",
		slog.String("run_id", report.ID),
		slog.Int("offers", len(report.Offers)),
		slog.Int("missing", len(report.Missing)),
		slog.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}
