package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// LockManager is an in-process keyed lock. The ttl argument is accepted for
// interface compatibility; locks are held until released.
type LockManager struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLockManager creates a LockManager.
func NewLockManager() *LockManager {
	return &LockManager{held: make(map[string]struct{})}
}

// Acquire takes key or returns domain.ErrLockHeld if it is already taken.
func (lm *LockManager) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if _, ok := lm.held[key]; ok {
		return nil, domain.ErrLockHeld
	}
	lm.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			lm.mu.Lock()
			delete(lm.held, key)
			lm.mu.Unlock()
		})
	}, nil
}

var _ domain.LockManager = (*LockManager)(nil)
