package locking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker implements Locker for a single process: tests and the
// database-less development mode. It honors the same wait, lease and
// ownership semantics as the Redis implementation.
type MemoryLocker struct {
	mu     sync.Mutex
	held   map[string]memoryEntry
	wait   time.Duration
	lease  time.Duration
	retry  time.Duration
	logger *zap.Logger
}

// NewMemoryLocker builds an in-process locker.
func NewMemoryLocker(wait, lease, retry time.Duration, logger *zap.Logger) *MemoryLocker {
	if retry <= 0 {
		retry = 5 * time.Millisecond
	}
	return &MemoryLocker{
		held:   make(map[string]memoryEntry),
		wait:   wait,
		lease:  lease,
		retry:  retry,
		logger: logger,
	}
}

// Acquire blocks up to the wait bound trying to take the named lock.
func (l *MemoryLocker) Acquire(ctx context.Context, key string) (*Lease, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		if lease := l.tryAcquire(key, token); lease != nil {
			return lease, nil
		}
		if time.Now().Add(l.retry).After(deadline) {
			return nil, &NotAcquiredError{Key: key, Wait: l.wait}
		}
		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, interrupted(ctx.Err())
		case <-timer.C:
		}
	}
}

func (l *MemoryLocker) tryAcquire(key, token string) *Lease {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if entry, ok := l.held[key]; ok && entry.expiresAt.After(now) {
		return nil
	}
	expiresAt := now.Add(l.lease)
	l.held[key] = memoryEntry{token: token, expiresAt: expiresAt}
	return &Lease{Key: key, Token: token, ExpiresAt: expiresAt}
}

// Release frees the lock if the caller still owns it; releasing an expired
// or reclaimed lease is a no-op.
func (l *MemoryLocker) Release(_ context.Context, lease *Lease) {
	if lease == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.held[lease.Key]
	if !ok || entry.token != lease.Token {
		if l.logger != nil {
			l.logger.Warn("lock no longer owned at release; lease likely expired", zap.String("key", lease.Key))
		}
		return
	}
	delete(l.held, lease.Key)
}
