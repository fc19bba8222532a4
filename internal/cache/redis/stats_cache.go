package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// DefaultStatsTTL bounds how long scraped sale statistics are reused.
const DefaultStatsTTL = 24 * time.Hour

// StatsCache implements domain.StatsCache with JSON values.
//
// Key schema:
//
//	stats:{releaseID} - string holding the JSON-encoded domain.Stats
type StatsCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStatsCache creates a StatsCache backed by the given Client. A
// non-positive ttl selects DefaultStatsTTL.
func NewStatsCache(c *Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{rdb: c.Underlying(), ttl: ttl}
}

func statsKey(releaseID int64) string { return "stats:" + strconv.FormatInt(releaseID, 10) }

// GetStats returns domain.ErrNotFound when nothing is cached for releaseID.
func (sc *StatsCache) GetStats(ctx context.Context, releaseID int64) (domain.Stats, error) {
	data, err := sc.rdb.Get(ctx, statsKey(releaseID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Stats{}, domain.ErrNotFound
		}
		return domain.Stats{}, fmt.Errorf("redis: get stats %d: %w", releaseID, err)
	}
	return decodeStats(data)
}

// SetStats stores stats for the configured TTL.
func (sc *StatsCache) SetStats(ctx context.Context, releaseID int64, stats domain.Stats) error {
	data, err := encodeStats(stats)
	if err != nil {
		return fmt.Errorf("redis: marshal stats %d: %w", releaseID, err)
	}
	if err := sc.rdb.Set(ctx, statsKey(releaseID), data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set stats %d: %w", releaseID, err)
	}
	return nil
}

// cachedStats is the stored form. Prices are absent for never-sold releases.
type cachedStats struct {
	Min       *domain.Price `json:"min,omitempty"`
	Median    *domain.Price `json:"median,omitempty"`
	Max       *domain.Price `json:"max,omitempty"`
	NeverSold bool          `json:"never_sold,omitempty"`
}

func encodeStats(s domain.Stats) ([]byte, error) {
	if s.IsNeverSold() {
		return json.Marshal(cachedStats{NeverSold: true})
	}
	return json.Marshal(cachedStats{Min: &s.Min, Median: &s.Median, Max: &s.Max})
}

func decodeStats(data []byte) (domain.Stats, error) {
	var c cachedStats
	if err := json.Unmarshal(data, &c); err != nil {
		return domain.Stats{}, fmt.Errorf("redis: unmarshal stats: %w", err)
	}
	if c.NeverSold {
		return domain.NeverSold(), nil
	}
	if c.Min == nil || c.Median == nil || c.Max == nil {
		return domain.Stats{}, fmt.Errorf("redis: incomplete stats entry")
	}
	return domain.NewStats(*c.Min, *c.Median, *c.Max), nil
}

var _ domain.StatsCache = (*StatsCache)(nil)
