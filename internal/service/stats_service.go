package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// StatsService serves release price statistics from the cache and falls back
// to the marketplace on a miss.
type StatsService struct {
	cache   domain.StatsCache
	fetcher domain.StatsFetcher
	logger  *slog.Logger
}

// NewStatsService creates a StatsService. cache may be nil, in which case
// every call goes to the fetcher.
func NewStatsService(cache domain.StatsCache, fetcher domain.StatsFetcher, logger *slog.Logger) *StatsService {
	return &StatsService{
		cache:   cache,
		fetcher: fetcher,
		logger:  logger,
	}
}

var _ domain.StatsFetcher = (*StatsService)(nil)

// Stats returns the statistics of releaseID. Cache failures are logged and
// treated as misses.
func (s *StatsService) Stats(ctx context.Context, releaseID int64, url string) (domain.Stats, error) {
	if s.cache != nil {
		stats, err := s.cache.GetStats(ctx, releaseID)
		if err == nil {
			return stats, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "stats_service: cache read failed",
				slog.Int64("release_id", releaseID),
				slog.String("error", err.Error()),
			)
		}
	}

	stats, err := s.fetcher.Stats(ctx, releaseID, url)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("stats_service: fetch release %d: %w", releaseID, err)
	}

	if s.cache != nil {
		if err := s.cache.SetStats(ctx, releaseID, stats); err != nil {
			s.logger.WarnContext(ctx, "stats_service: cache write failed",
				slog.Int64("release_id", releaseID),
				slog.String("error", err.Error()),
			)
		}
	}
	return stats, nil
}
