// Package locking provides named, cross-process mutual exclusion for
// ticket mutations. Acquisition is bounded by a wait time, holds are
// bounded by a lease so a crashed holder cannot wedge a ticket, and
// release is ownership-checked so an expired lease reclaimed by another
// holder is never deleted by the original owner.
package locking

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInterrupted is returned when the caller's context is cancelled while
// waiting to acquire. The underlying context error is wrapped so upstream
// cancellation propagates normally.
var ErrInterrupted = errors.New("interrupted while waiting for lock")

// NotAcquiredError reports that the lock could not be obtained within the
// wait bound. Callers may retry with backoff; the guard itself never does.
type NotAcquiredError struct {
	Key  string
	Wait time.Duration
}

func (e *NotAcquiredError) Error() string {
	return fmt.Sprintf("could not acquire lock %s within %s", e.Key, e.Wait)
}

// Lease is a handle on a held lock. Token is the fencing value proving
// ownership; release compares it against the stored value before deleting.
type Lease struct {
	Key       string
	Token     string
	ExpiresAt time.Time
}

// Locker obtains exclusive named locks with bounded wait and hold times.
//
// Release never reports an error: it runs on every exit path of a critical
// section, and a failed release must not mask the outcome of the protected
// operation. Implementations log release failures and treat releasing a
// lease that is no longer owned as a no-op. Release still runs when ctx is
// already cancelled.
type Locker interface {
	Acquire(ctx context.Context, key string) (*Lease, error)
	Release(ctx context.Context, lease *Lease)
}
