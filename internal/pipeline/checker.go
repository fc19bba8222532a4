package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
	"github.com/alanyoungcy/wantlistbot/internal/threshold"
)

// CeilingResolver decides the price ceiling of every want-list item.
type CeilingResolver interface {
	Resolve(ctx context.Context, items []domain.WantlistItem) (threshold.Resolution, error)
}

// OfferMatcher selects the good offers among parsed listings.
type OfferMatcher interface {
	Match(items []domain.WantlistItem, listings map[int64][]domain.Listing, ceilings map[int64]domain.Price) ([]domain.GoodOffer, error)
}

// ReportNotifier delivers the outcome of a pass to the user.
type ReportNotifier interface {
	NotifyReport(ctx context.Context, report domain.RunReport) error
}

// CheckerConfig holds the tunables of a Checker.
type CheckerConfig struct {
	// Concurrency bounds the number of releases scraped at once.
	Concurrency int
	// NotifiedTTL is how long an offer stays in the ledger once notified.
	NotifiedTTL time.Duration
}

// Checker runs complete want-list passes: load, resolve ceilings, scrape,
// match, notify and record.
type Checker struct {
	source   domain.WantlistSource
	resolver CeilingResolver
	scraper  *OfferScraper
	matcher  OfferMatcher
	ledger   domain.OfferLedger
	notifier ReportNotifier
	recorder *Recorder
	cfg      CheckerConfig
	logger   *slog.Logger

	trigger chan struct{}

	mu   sync.RWMutex
	last *domain.RunReport
}

// NewChecker creates a new Checker. ledger, notifier and recorder may be nil.
func NewChecker(
	source domain.WantlistSource,
	resolver CeilingResolver,
	scraper *OfferScraper,
	matcher OfferMatcher,
	ledger domain.OfferLedger,
	notifier ReportNotifier,
	recorder *Recorder,
	cfg CheckerConfig,
	logger *slog.Logger,
) *Checker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Checker{
		source:   source,
		resolver: resolver,
		scraper:  scraper,
		matcher:  matcher,
		ledger:   ledger,
		notifier: notifier,
		recorder: recorder,
		cfg:      cfg,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

type scrapeResult struct {
	rows []domain.RawListing
	err  error
}

// Run executes one pass and returns its report. Errors loading the want-list
// or resolving ceilings abort the pass; scrape failures only exclude the
// affected items.
func (c *Checker) Run(ctx context.Context) (domain.RunReport, error) {
	report := domain.RunReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	logger := c.logger.With(slog.String("run_id", report.ID))

	items, err := c.source.Wantlist(ctx)
	if err != nil {
		return report, fmt.Errorf("checker: load wantlist: %w", err)
	}
	report.Items = len(items)

	res, err := c.resolver.Resolve(ctx, items)
	if err != nil {
		return report, fmt.Errorf("checker: resolve ceilings: %w", err)
	}
	report.Missing = res.Missing

	var targets []domain.WantlistItem
	for _, it := range res.Items {
		if _, ok := res.Ceilings[it.ID]; ok {
			targets = append(targets, it)
		}
	}

	logger.InfoContext(ctx, "scraping marketplace",
		slog.Int("items", len(items)),
		slog.Int("with_ceiling", len(targets)),
		slog.Int("missing", len(res.Missing)),
	)

	results, err := c.scrape(ctx, targets)
	if err != nil {
		return report, fmt.Errorf("checker: scrape: %w", err)
	}

	listings := make(map[int64][]domain.Listing, len(targets))
	for i, it := range targets {
		r := results[i]
		if r.err != nil {
			logger.WarnContext(ctx, "excluding item after scrape failure",
				slog.Int64("item_id", it.ID),
				slog.String("error", r.err.Error()),
			)
			report.Failures = append(report.Failures, domain.ScrapeFailure{Item: it, Error: r.err.Error()})
			continue
		}
		for _, raw := range r.rows {
			l, err := domain.ParseListing(raw, it)
			if err != nil {
				report.Dropped++
				logger.DebugContext(ctx, "dropping unparsable listing",
					slog.Int64("item_id", it.ID),
					slog.String("url", raw.URL),
					slog.String("error", err.Error()),
				)
				continue
			}
			listings[it.ID] = append(listings[it.ID], l)
		}
	}

	offers, err := c.matcher.Match(res.Items, listings, res.Ceilings)
	for _, e := range unjoin(err) {
		report.Incomparable++
		logger.WarnContext(ctx, "listing not comparable with ceiling", slog.String("error", e.Error()))
	}
	report.Offers = offers

	if c.notifier != nil {
		notice := report
		notice.Offers = c.unnotified(ctx, offers)
		if err := c.notifier.NotifyReport(ctx, notice); err != nil {
			logger.ErrorContext(ctx, "notification failed", slog.String("error", err.Error()))
			c.forget(ctx, notice.Offers)
		}
	}

	report.FinishedAt = time.Now().UTC()

	if c.recorder != nil {
		if err := c.recorder.Record(ctx, report); err != nil {
			logger.ErrorContext(ctx, "recording run failed", slog.String("error", err.Error()))
		}
	}

	c.mu.Lock()
	c.last = &report
	c.mu.Unlock()

	logger.InfoContext(ctx, "pass complete",
		slog.Int("offers", len(report.Offers)),
		slog.Int("missing", len(report.Missing)),
		slog.Int("failures", len(report.Failures)),
		slog.Int("dropped", report.Dropped),
		slog.Int("incomparable", report.Incomparable),
		slog.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)

	return report, nil
}

// scrape collects the offers of every target concurrently. Per-item failures
// are kept in the result slot; only cancellation fails the whole call.
func (c *Checker) scrape(ctx context.Context, targets []domain.WantlistItem) ([]scrapeResult, error) {
	results := make([]scrapeResult, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)

	for i, it := range targets {
		g.Go(func() error {
			rows, err := c.scraper.Collect(gctx, releaseID(it))
			results[i] = scrapeResult{rows: rows, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// unnotified filters offers through the ledger. Ledger errors let the offer
// through.
func (c *Checker) unnotified(ctx context.Context, offers []domain.GoodOffer) []domain.GoodOffer {
	if c.ledger == nil {
		return offers
	}
	var fresh []domain.GoodOffer
	for _, o := range offers {
		isNew, err := c.ledger.MarkNotified(ctx, OfferKey(o), c.cfg.NotifiedTTL)
		if err != nil {
			c.logger.WarnContext(ctx, "offer ledger unavailable",
				slog.String("url", o.Listing.URL),
				slog.String("error", err.Error()),
			)
			fresh = append(fresh, o)
			continue
		}
		if isNew {
			fresh = append(fresh, o)
		}
	}
	return fresh
}

// forget releases the ledger keys of offers whose notification failed so the
// next pass sends them again.
func (c *Checker) forget(ctx context.Context, offers []domain.GoodOffer) {
	if c.ledger == nil {
		return
	}
	for _, o := range offers {
		if err := c.ledger.Forget(ctx, OfferKey(o)); err != nil {
			c.logger.WarnContext(ctx, "offer ledger forget failed",
				slog.String("url", o.Listing.URL),
				slog.String("error", err.Error()),
			)
		}
	}
}

// OfferKey identifies an offer in the notified ledger. Rows scraped without a
// link are keyed by release, grades and price instead.
func OfferKey(o domain.GoodOffer) string {
	l := o.Listing
	if l.URL != "" {
		return "offer:" + l.URL
	}
	return fmt.Sprintf("offer:%d:%d:%s:%s:%s", l.ItemID, l.ReleaseID, l.Media, l.Sleeve, l.Price)
}

// LastReport returns the report of the most recent completed pass.
func (c *Checker) LastReport() (domain.RunReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return domain.RunReport{}, false
	}
	return *c.last, true
}

// Trigger requests an extra pass from RunLoop. It returns false when a
// request is already pending.
func (c *Checker) Trigger() bool {
	select {
	case c.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// RunLoop runs a pass immediately, then on every interval tick and every
// Trigger, until the context is cancelled.
func (c *Checker) RunLoop(ctx context.Context, interval time.Duration) error {
	c.runLogged(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("checker loop stopped")
			return ctx.Err()
		case <-ticker.C:
			c.runLogged(ctx)
		case <-c.trigger:
			c.logger.Info("pass triggered")
			c.runLogged(ctx)
		}
	}
}

func (c *Checker) runLogged(ctx context.Context) {
	if _, err := c.Run(ctx); err != nil && ctx.Err() == nil {
		c.logger.Error("pass failed", slog.String("error", err.Error()))
	}
}

func releaseID(it domain.WantlistItem) int64 {
	if it.ReleaseID != 0 {
		return it.ReleaseID
	}
	return it.ID
}

func unjoin(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
