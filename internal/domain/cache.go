package domain

import (
	"context"
	"time"
)

// StatsCache keeps recently scraped price statistics per release.
type StatsCache interface {
	GetStats(ctx context.Context, releaseID int64) (Stats, error)
	SetStats(ctx context.Context, releaseID int64, stats Stats) error
}

// OfferLedger remembers which offers were already notified so watch passes
// do not repeat themselves. MarkNotified returns false when the key was
// already present. Forget releases a key whose notification was not
// delivered.
type OfferLedger interface {
	MarkNotified(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, key string) error
}

// LockManager provides keyed mutual exclusion.
type LockManager interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}
