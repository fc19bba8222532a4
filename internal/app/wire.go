package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/alanyoungcy/wantlistbot/internal/blob/s3"
	"github.com/alanyoungcy/wantlistbot/internal/cache/memory"
	"github.com/alanyoungcy/wantlistbot/internal/cache/redis"
	"github.com/alanyoungcy/wantlistbot/internal/config"
	"github.com/alanyoungcy/wantlistbot/internal/crypto"
	"github.com/alanyoungcy/wantlistbot/internal/domain"
	"github.com/alanyoungcy/wantlistbot/internal/notify"
	"github.com/alanyoungcy/wantlistbot/internal/platform/discogs"
	"github.com/alanyoungcy/wantlistbot/internal/server/handler"
	"github.com/alanyoungcy/wantlistbot/internal/service"
	"github.com/alanyoungcy/wantlistbot/internal/store/postgres"
)

// Dependencies bundles every adapter the application modes need. It is
// constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Discogs
	Discogs     *discogs.Client
	Marketplace *discogs.Marketplace
	// Stats is nil when stats scraping is disabled.
	Stats domain.StatsFetcher

	// Stores (nil unless postgres is enabled)
	RunStore   domain.RunStore
	AuditStore domain.AuditStore

	// Caches: Redis when enabled, in-process otherwise.
	LockManager domain.LockManager
	OfferLedger domain.OfferLedger
	// MemoryLedger is set when OfferLedger is in-process and needs pruning.
	MemoryLedger *memory.OfferLedger

	// Blob storage (nil unless s3 is enabled)
	Archiver domain.ReportArchiver

	// Notifications
	Notifier *notify.Notifier

	// Pings of the optional backends for the health endpoint.
	Pings map[string]handler.PingFunc
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{Pings: map[string]handler.PingFunc{}}

	// --- Discogs ---
	token, err := crypto.LoadToken(crypto.TokenConfig{
		RawToken:           cfg.Discogs.Token,
		EncryptedTokenPath: cfg.Discogs.TokenEncryptedPath,
		Password:           cfg.Discogs.TokenPassword,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("wire: discogs token: %w", err)
	}

	timeout := cfg.Discogs.HTTPTimeout.Duration
	deps.Discogs = discogs.NewClient(discogs.ClientConfig{
		APIURL:    cfg.Discogs.APIURL,
		WebURL:    cfg.Discogs.WebURL,
		Token:     token,
		Username:  cfg.Discogs.Username,
		UserAgent: cfg.Discogs.UserAgent,
		Timeout:   timeout,
	}, logger.With(slog.String("component", "discogs_api")))
	deps.Marketplace = discogs.NewMarketplace(
		cfg.Discogs.WebURL, cfg.Discogs.UserAgent, cfg.Discogs.PageSize, timeout,
		logger.With(slog.String("component", "marketplace")),
	)

	// --- PostgreSQL ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		pool := pgClient.Pool()
		deps.RunStore = postgres.NewRunStore(pool)
		deps.AuditStore = postgres.NewAuditStore(pool)
		deps.Pings["postgres"] = pgClient.Ping
	}

	// --- Redis, or in-process fallbacks ---
	var statsCache domain.StatsCache
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.LockManager = redis.NewLockManager(redisClient)
		deps.OfferLedger = redis.NewOfferLedger(redisClient)
		statsCache = redis.NewStatsCache(redisClient, cfg.Redis.StatsTTL.Duration)
		deps.Pings["redis"] = redisClient.Ping
	} else {
		ledger := memory.NewOfferLedger()
		deps.LockManager = memory.NewLockManager()
		deps.OfferLedger = ledger
		deps.MemoryLedger = ledger
		statsCache = memory.NewStatsCache(cfg.Redis.StatsTTL.Duration)
	}

	// --- Release statistics ---
	if cfg.Scrape.StatsEnabled {
		var resolver discogs.RedirectResolver
		if cfg.Scrape.BrowserEnabled {
			resolver = discogs.NewBrowserResolver(
				cfg.Scrape.ChromeBin, cfg.Discogs.UserAgent, timeout,
				logger.With(slog.String("component", "browser")),
			)
		}
		scraper := discogs.NewStatsScraper(
			cfg.Discogs.WebURL, cfg.Discogs.UserAgent, timeout, resolver,
			logger.With(slog.String("component", "stats_scraper")),
		)
		deps.Stats = service.NewStatsService(statsCache, scraper,
			logger.With(slog.String("component", "stats_service")))
	}

	// --- S3 blob storage ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
			Prefix:         cfg.S3.Prefix,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewReportArchiver(s3blob.NewWriter(s3Client))
		deps.Pings["s3"] = s3Client.Health
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	if cfg.Notify.HomeAssistantURL != "" {
		senders = append(senders, notify.NewHomeAssistantSender(
			cfg.Notify.HomeAssistantURL,
			cfg.Notify.HomeAssistantToken,
			cfg.Notify.HomeAssistantDevice,
		))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
