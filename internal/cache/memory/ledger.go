// Package memory provides in-process implementations of the cache, ledger
// and lock interfaces for runs without Redis.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// OfferLedger remembers notified offers for a time-to-live window. It is
// safe for concurrent use. State is lost when the process exits.
type OfferLedger struct {
	seen map[string]time.Time // key -> expiry
	mu   sync.Mutex
	now  func() time.Time
}

// NewOfferLedger creates an empty OfferLedger.
func NewOfferLedger() *OfferLedger {
	return &OfferLedger{
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// MarkNotified records key and returns true if it was not present or had
// expired.
func (l *OfferLedger) MarkNotified(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiry, ok := l.seen[key]; ok && now.Before(expiry) {
		return false, nil
	}
	l.seen[key] = now.Add(ttl)
	return true, nil
}

// Forget removes key.
func (l *OfferLedger) Forget(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.seen, key)
	return nil
}

// Cleanup removes expired entries. Call it periodically to bound memory.
func (l *OfferLedger) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, expiry := range l.seen {
		if !now.Before(expiry) {
			delete(l.seen, key)
		}
	}
}

// Len returns the number of tracked keys.
func (l *OfferLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

var _ domain.OfferLedger = (*OfferLedger)(nil)
