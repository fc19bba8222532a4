package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

type statsEntry struct {
	stats  domain.Stats
	expiry time.Time
}

// StatsCache keeps release statistics in a map with a fixed TTL.
type StatsCache struct {
	entries map[int64]statsEntry
	ttl     time.Duration
	mu      sync.RWMutex
	now     func() time.Time
}

// NewStatsCache creates a StatsCache.
func NewStatsCache(ttl time.Duration) *StatsCache {
	return &StatsCache{
		entries: make(map[int64]statsEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// GetStats returns domain.ErrNotFound for missing or expired entries.
func (c *StatsCache) GetStats(_ context.Context, releaseID int64) (domain.Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[releaseID]
	if !ok || !c.now().Before(e.expiry) {
		return domain.Stats{}, domain.ErrNotFound
	}
	return e.stats, nil
}

// SetStats stores stats until the TTL elapses.
func (c *StatsCache) SetStats(_ context.Context, releaseID int64, stats domain.Stats) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[releaseID] = statsEntry{stats: stats, expiry: c.now().Add(c.ttl)}
	return nil
}

var _ domain.StatsCache = (*StatsCache)(nil)
