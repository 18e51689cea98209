package locking

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryLocker_AcquireAndRelease(t *testing.T) {
	locker := NewMemoryLocker(50*time.Millisecond, time.Second, time.Millisecond, nil)
	ctx := context.Background()

	lease, err := locker.Acquire(ctx, "ticket:lock:t1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if lease.Token == "" {
		t.Fatal("lease token is empty")
	}

	locker.Release(ctx, lease)

	// Reacquire after release must succeed immediately.
	lease2, err := locker.Acquire(ctx, "ticket:lock:t1")
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	locker.Release(ctx, lease2)
}

func TestMemoryLocker_WaitBoundExpires(t *testing.T) {
	locker := NewMemoryLocker(30*time.Millisecond, time.Second, time.Millisecond, nil)
	ctx := context.Background()

	lease, err := locker.Acquire(ctx, "ticket:lock:t1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer locker.Release(ctx, lease)

	start := time.Now()
	_, err = locker.Acquire(ctx, "ticket:lock:t1")
	var notAcquired *NotAcquiredError
	if !errors.As(err, &notAcquired) {
		t.Fatalf("second Acquire() error = %v, want NotAcquiredError", err)
	}
	if notAcquired.Key != "ticket:lock:t1" {
		t.Errorf("NotAcquiredError.Key = %q, want %q", notAcquired.Key, "ticket:lock:t1")
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Acquire blocked %v, wait bound was 30ms", elapsed)
	}
}

func TestMemoryLocker_CancelledWaitIsInterrupted(t *testing.T) {
	locker := NewMemoryLocker(time.Second, time.Second, time.Millisecond, nil)
	ctx := context.Background()

	lease, err := locker.Acquire(ctx, "ticket:lock:t1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer locker.Release(ctx, lease)

	waitCtx, cancel := context.WithCancel(ctx)
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = locker.Acquire(waitCtx, "ticket:lock:t1")
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("Acquire() error = %v, want ErrInterrupted", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("interruption should wrap the context error, got %v", err)
	}
}

func TestMemoryLocker_ReleaseByNonOwnerIsNoop(t *testing.T) {
	locker := NewMemoryLocker(20*time.Millisecond, time.Second, time.Millisecond, nil)
	ctx := context.Background()

	lease, err := locker.Acquire(ctx, "ticket:lock:t1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	forged := &Lease{Key: lease.Key, Token: "not-the-owner"}
	locker.Release(ctx, forged)

	// The lock must still be held by the original owner.
	if _, err := locker.Acquire(ctx, "ticket:lock:t1"); err == nil {
		t.Fatal("lock was freed by a non-owner release")
	}

	locker.Release(ctx, lease)
}

func TestMemoryLocker_LeaseExpiryFreesLock(t *testing.T) {
	locker := NewMemoryLocker(20*time.Millisecond, 15*time.Millisecond, time.Millisecond, nil)
	ctx := context.Background()

	stale, err := locker.Acquire(ctx, "ticket:lock:t1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	// The lease expired, so another caller can take the lock.
	fresh, err := locker.Acquire(ctx, "ticket:lock:t1")
	if err != nil {
		t.Fatalf("Acquire() after lease expiry error = %v", err)
	}

	// Releasing the stale lease must not free the new holder's lock.
	locker.Release(ctx, stale)
	if _, err := locker.Acquire(ctx, "ticket:lock:t1"); err == nil {
		t.Fatal("stale release freed a lock held by another caller")
	}

	locker.Release(ctx, fresh)
}

func TestMemoryLocker_DistinctKeysDoNotContend(t *testing.T) {
	locker := NewMemoryLocker(20*time.Millisecond, time.Second, time.Millisecond, nil)
	ctx := context.Background()

	a, err := locker.Acquire(ctx, "ticket:lock:a")
	if err != nil {
		t.Fatalf("Acquire(a) error = %v", err)
	}
	b, err := locker.Acquire(ctx, "ticket:lock:b")
	if err != nil {
		t.Fatalf("Acquire(b) error = %v", err)
	}
	locker.Release(ctx, a)
	locker.Release(ctx, b)
}
