package ports

import (
	"context"
	"time"
)

// Locker serializes mutating gateway operations per payment reference. The
// lock is acquired before the idempotency check and held until the gateway
// call result is persisted, so two entry points observing the same payment
// cannot both decide "not yet processed" and double-submit.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
}
