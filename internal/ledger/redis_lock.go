package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

const lockRetryBackoff = 25 * time.Millisecond

// RedisLocker holds item locks in Redis so that every server instance
// observes them. A lock expires after ttl even if its holder dies.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	logger *logrus.Logger
}

func NewRedisLocker(rdb redislock.RedisClient, ttl, wait time.Duration, logger *logrus.Logger) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		wait:   wait,
		logger: logger,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(lockRetryBackoff),
	})
	if err != nil {
		return nil, l.obtainError(ctx, key, err)
	}
	return l.releaser(key, lock), nil
}

func (l *RedisLocker) TryAcquire(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, nil)
	if err != nil {
		return nil, l.obtainError(ctx, key, err)
	}
	return l.releaser(key, lock), nil
}

func (l *RedisLocker) obtainError(ctx context.Context, key string, err error) error {
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrLockNotObtained, key)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %s: %v", ErrLockNotObtained, key, ctx.Err())
	}
	return fmt.Errorf("obtain lock %s: %w", key, err)
}

func (l *RedisLocker) releaser(key string, lock *redislock.Lock) func() {
	return func() {
		// Release with a fresh context: the request context may already be
		// cancelled and the lock must not linger until its TTL.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.WithFields(logrus.Fields{"module": "ledger", "lock": key}).WithError(err).Warn("release lock")
		}
	}
}
