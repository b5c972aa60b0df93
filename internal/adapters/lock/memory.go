package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker implements ports.Locker with in-process locks keyed by lock
// name. Suitable for single-instance deployments and tests; use RedisLocker
// when more than one instance serves gateway callbacks.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

// keyedLock is a one-slot semaphore so that waiters can give up when their
// context is cancelled.
type keyedLock struct {
	ch   chan struct{}
	refs int
}

// NewMemoryLocker creates an in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*keyedLock)}
}

// WithLock executes fn while holding the in-process lock for key. The ttl is
// ignored: the lock lives exactly as long as fn runs. A waiter returns the
// context error as soon as its context is cancelled, even while another
// caller still holds the lock.
func (l *MemoryLocker) WithLock(ctx context.Context, key string, _ time.Duration, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	kl := l.acquireEntry(key)
	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseEntry(key, kl)
		return ctx.Err()
	}
	defer func() {
		<-kl.ch
		l.releaseEntry(key, kl)
	}()

	return fn(ctx)
}

func (l *MemoryLocker) acquireEntry(key string) *keyedLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *MemoryLocker) releaseEntry(key string, kl *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}
