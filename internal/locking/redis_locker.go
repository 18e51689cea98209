package locking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the key only when it still holds the caller's
// token, making release a no-op once the lease expired and another holder
// claimed the lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker on a shared Redis instance using
// SET NX PX with a per-acquisition token. Waiting callers poll at the
// retry interval until the wait bound elapses.
type RedisLocker struct {
	client *redis.Client
	wait   time.Duration
	lease  time.Duration
	retry  time.Duration
	logger *zap.Logger
}

// NewRedisLocker builds a locker. The lease must comfortably outlast the
// worst-case critical section; the wait bound caps caller-visible latency
// under contention.
func NewRedisLocker(client *redis.Client, wait, lease, retry time.Duration, logger *zap.Logger) *RedisLocker {
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	return &RedisLocker{client: client, wait: wait, lease: lease, retry: retry, logger: logger}
}

// Acquire blocks up to the wait bound trying to take the named lock.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (*Lease, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.lease).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, interrupted(ctxErr)
			}
			return nil, err
		}
		if ok {
			return &Lease{Key: key, Token: token, ExpiresAt: time.Now().Add(l.lease)}, nil
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

// Release deletes the lock if the caller still owns it. Failures are
// logged and swallowed; the protected operation's outcome stands either
// way.
func (l *RedisLocker) Release(ctx context.Context, lease *Lease) {
	if lease == nil {
		return
	}
	// The release must run even when the caller was cancelled mid
	// critical section.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	deleted, err := releaseScript.Run(ctx, l.client, []string{lease.Key}, lease.Token).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		l.logger.Error("lock release failed", zap.String("key", lease.Key), zap.Error(err))
		return
	}
	if deleted == 0 {
		l.logger.Warn("lock no longer owned at release; lease likely expired", zap.String("key", lease.Key))
	}
}

func interrupted(cause error) error {
	return errors.Join(ErrInterrupted, cause)
}
