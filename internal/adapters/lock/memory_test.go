package lock_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kevin07696/monext-gateway/internal/adapters/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockerRunsCallback(t *testing.T) {
	locker := lock.NewMemoryLocker()
	ran := false

	err := locker.WithLock(context.Background(), "k", time.Second, func(ctx context.Context) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestMemoryLockerPropagatesCallbackError(t *testing.T) {
	locker := lock.NewMemoryLocker()
	cause := errors.New("boom")

	err := locker.WithLock(context.Background(), "k", time.Second, func(ctx context.Context) error {
		return cause
	})

	assert.ErrorIs(t, err, cause)
}

func TestMemoryLockerSerializesSameKey(t *testing.T) {
	locker := lock.NewMemoryLocker()

	const workers = 8
	const iterations = 50

	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				_ = locker.WithLock(context.Background(), "payment-1", time.Second, func(ctx context.Context) error {
					counter++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*iterations, counter)
}

func TestMemoryLockerIndependentKeys(t *testing.T) {
	locker := lock.NewMemoryLocker()
	release := make(chan struct{})
	acquired := make(chan struct{})

	go func() {
		_ = locker.WithLock(context.Background(), "a", time.Second, func(ctx context.Context) error {
			close(acquired)
			<-release
			return nil
		})
	}()

	<-acquired

	// A different key must not wait for "a" to be released.
	done := make(chan struct{})
	go func() {
		_ = locker.WithLock(context.Background(), "b", time.Second, func(ctx context.Context) error {
			return nil
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on an independent key blocked")
	}
	close(release)
}

func TestMemoryLockerCancelledContext(t *testing.T) {
	locker := lock.NewMemoryLocker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := locker.WithLock(ctx, "k", time.Second, func(ctx context.Context) error {
		t.Fatal("callback must not run with a cancelled context")
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryLockerCancelledWaiterReturns(t *testing.T) {
	locker := lock.NewMemoryLocker()
	holding := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = locker.WithLock(context.Background(), "k", time.Second, func(ctx context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	ctx, cancel := context.WithCancel(context.Background())
	waiterErr := make(chan error, 1)
	go func() {
		waiterErr <- locker.WithLock(ctx, "k", time.Second, func(ctx context.Context) error {
			t.Error("callback ran for a cancelled waiter")
			return nil
		})
	}()

	cancel()
	select {
	case err := <-waiterErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter did not return after cancellation")
	}

	close(release)
	wg.Wait()
}
