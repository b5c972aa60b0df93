package lock

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL          = 30 * time.Second
	defaultRetryBackoff = 50 * time.Millisecond
)

// RedisLocker implements ports.Locker with a Redis-backed distributed lock.
// It serializes mutating gateway operations across service instances.
type RedisLocker struct {
	client       *redis.Client
	retryBackoff time.Duration
}

// NewRedisLocker creates a Redis-backed locker. A zero retryBackoff falls
// back to 50ms between acquisition attempts.
func NewRedisLocker(client *redis.Client, retryBackoff time.Duration) *RedisLocker {
	if retryBackoff <= 0 {
		retryBackoff = defaultRetryBackoff
	}
	return &RedisLocker{client: client, retryBackoff: retryBackoff}
}

// WithLock executes fn while holding the lock for key. The lock is released
// even if fn returns an error. Acquisition retries until the context is done.
func (l *RedisLocker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	if l.client == nil {
		return domain.NewDomainError(domain.ErrorCodeConfigMissing, "redis client not configured")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return domain.WrapError(domain.ErrorCodeInternalError, "acquire lock", err)
		}
		if ok {
			defer l.release(context.Background(), key, token)
			return fn(ctx)
		}
		timer := time.NewTimer(l.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// release deletes the key only if it still holds our token, so an expired
// lock reacquired by another holder is never deleted from here.
func (l *RedisLocker) release(ctx context.Context, key, token string) {
	const script = `if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`
	if err := l.client.Eval(ctx, script, []string{key}, token).Err(); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unknown command") {
			_ = l.client.Del(ctx, key).Err()
		}
	}
}
