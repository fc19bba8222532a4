package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// DefaultNotifiedTTL is how long an offer stays marked as notified.
const DefaultNotifiedTTL = 30 * 24 * time.Hour

// OfferLedger implements domain.OfferLedger with SET NX so that concurrent
// watchers notify each offer once.
//
// Key schema:
//
//	notified:{key} - "1", expires after the TTL
type OfferLedger struct {
	rdb *redis.Client
}

// NewOfferLedger creates an OfferLedger backed by the given Client.
func NewOfferLedger(c *Client) *OfferLedger {
	return &OfferLedger{rdb: c.Underlying()}
}

func notifiedKey(key string) string { return "notified:" + key }

// MarkNotified records key and reports whether it was new.
func (l *OfferLedger) MarkNotified(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = DefaultNotifiedTTL
	}
	ok, err := l.rdb.SetNX(ctx, notifiedKey(key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: mark notified %s: %w", key, err)
	}
	return ok, nil
}

// Forget removes key so the offer is notified again on the next pass.
func (l *OfferLedger) Forget(ctx context.Context, key string) error {
	if err := l.rdb.Del(ctx, notifiedKey(key)).Err(); err != nil {
		return fmt.Errorf("redis: forget %s: %w", key, err)
	}
	return nil
}

var _ domain.OfferLedger = (*OfferLedger)(nil)
