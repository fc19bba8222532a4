package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/wantlistbot/internal/matcher"
	"github.com/alanyoungcy/wantlistbot/internal/notify"
	"github.com/alanyoungcy/wantlistbot/internal/pipeline"
	"github.com/alanyoungcy/wantlistbot/internal/server"
	"github.com/alanyoungcy/wantlistbot/internal/server/handler"
	"github.com/alanyoungcy/wantlistbot/internal/threshold"
)

// ledgerCleanupInterval is how often the in-process offer ledger is pruned.
const ledgerCleanupInterval = time.Hour

// OnceMode runs a single pass and prints the report.
func (a *App) OnceMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting once mode")

	checker, err := a.buildChecker(deps)
	if err != nil {
		return fmt.Errorf("once mode: %w", err)
	}

	report, err := checker.Run(ctx)
	if err != nil {
		return fmt.Errorf("once mode: %w", err)
	}
	notify.WriteReport(ctx, a.out, report, deps.Stats)
	return nil
}

// WatchMode runs a pass every watch interval, serves the HTTP API when
// enabled and prunes the in-process ledger, until the context is cancelled.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	interval := a.cfg.Watch.Interval.Duration
	a.logger.InfoContext(ctx, "starting watch mode", slog.Duration("interval", interval))

	checker, err := a.buildChecker(deps)
	if err != nil {
		return fmt.Errorf("watch mode: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := checker.RunLoop(ctx, interval); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if deps.MemoryLedger != nil {
		g.Go(func() error {
			ticker := time.NewTicker(ledgerCleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					deps.MemoryLedger.Cleanup()
				}
			}
		})
	}

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, checker)
	}

	return g.Wait()
}

// buildChecker assembles a Checker from the wired adapters and the match and
// scrape settings.
func (a *App) buildChecker(deps *Dependencies) (*pipeline.Checker, error) {
	minMedia, err := a.cfg.Match.MinMedia()
	if err != nil {
		return nil, fmt.Errorf("min media condition: %w", err)
	}
	minSleeve, err := a.cfg.Match.MinSleeve()
	if err != nil {
		return nil, fmt.Errorf("min sleeve condition: %w", err)
	}
	rates, err := a.cfg.Match.Rates()
	if err != nil {
		return nil, err
	}
	// Without rates prices are only compared within their own currency.
	reference := ""
	if len(rates) > 0 {
		reference = a.cfg.Match.ReferenceCurrency
	}

	var (
		writer   threshold.GroupWriter
		prompter threshold.Prompter
	)
	if a.cfg.Match.Interactive {
		writer = threshold.NewNotesGroupWriter(deps.Discogs, deps.LockManager, deps.AuditStore, a.root)
		prompter = threshold.NewTerminalPrompter(a.in, a.out, deps.Stats, deps.Discogs, a.root)
	}
	resolver := threshold.NewResolver(writer, prompter, threshold.Options{
		Interactive: a.cfg.Match.Interactive,
		Currency:    a.cfg.Match.ReferenceCurrency,
	}, a.root)

	var notifier pipeline.ReportNotifier
	if deps.Notifier.Senders() > 0 {
		notifier = notify.NewReportNotifier(deps.Notifier, deps.Stats,
			a.root.With(slog.String("component", "report_notifier")))
	}

	scraper := pipeline.NewOfferScraper(deps.Marketplace, a.root.With(slog.String("component", "offer_scraper")))
	recorder := pipeline.NewRecorder(deps.RunStore, deps.AuditStore, deps.Archiver,
		a.root.With(slog.String("component", "recorder")))

	return pipeline.NewChecker(
		deps.Discogs,
		resolver,
		scraper,
		matcher.New(minMedia, minSleeve, rates, reference),
		deps.OfferLedger,
		notifier,
		recorder,
		pipeline.CheckerConfig{
			Concurrency: a.cfg.Scrape.Concurrency,
			NotifiedTTL: a.cfg.Redis.NotifiedTTL.Duration,
		},
		a.root.With(slog.String("component", "checker")),
	), nil
}

// startHTTPServer adds the HTTP server goroutines to the given errgroup. The
// server is shut down gracefully when the context is cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, checker *pipeline.Checker) {
	httpLogger := a.root.With(slog.String("component", "http"))
	srv := server.NewServer(server.Config{
		Port:   a.cfg.Server.Port,
		APIKey: a.cfg.Server.APIKey,
	}, server.Handlers{
		Health:  handler.NewHealthHandler(deps.Pings, httpLogger),
		Status:  handler.NewStatusHandler(a.cfg.Mode, checker),
		Check:   handler.NewCheckHandler(checker, httpLogger),
		History: handler.NewHistoryHandler(deps.RunStore, deps.AuditStore, httpLogger),
	}, a.root)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
