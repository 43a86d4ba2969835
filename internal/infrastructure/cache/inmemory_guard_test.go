package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryGuard_Acquire(t *testing.T) {
	guard := NewInMemoryGuard()
	defer guard.Close()

	ctx := context.Background()

	t.Run("acquires free key", func(t *testing.T) {
		token, ok, err := guard.Acquire(ctx, "order-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NotEmpty(t, token)
	})

	t.Run("rejects held key", func(t *testing.T) {
		_, ok, err := guard.Acquire(ctx, "order-2", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)

		token, ok, err := guard.Acquire(ctx, "order-2", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok, "second acquire should fail while held")
		assert.Empty(t, token)
	})

	t.Run("release frees key", func(t *testing.T) {
		token, _, err := guard.Acquire(ctx, "order-3", time.Minute)
		require.NoError(t, err)
		require.NoError(t, guard.Release(ctx, "order-3", token))

		_, ok, err := guard.Acquire(ctx, "order-3", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("release with a foreign token keeps the holder", func(t *testing.T) {
		_, _, err := guard.Acquire(ctx, "order-5", time.Minute)
		require.NoError(t, err)
		require.NoError(t, guard.Release(ctx, "order-5", "not-the-holder"))

		_, ok, err := guard.Acquire(ctx, "order-5", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestInMemoryGuard_ExpiredHolder(t *testing.T) {
	guard := NewInMemoryGuard()
	defer guard.Close()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return now }
	ctx := context.Background()

	stale, ok, err := guard.Acquire(ctx, "fulfillment:order-7", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	fresh, ok, err := guard.Acquire(ctx, "fulfillment:order-7", time.Minute)
	require.NoError(t, err)
	require.True(t, ok, "expired holder is replaced")
	assert.NotEqual(t, stale, fresh)

	// The slow first submission finishes and releases late
	require.NoError(t, guard.Release(ctx, "fulfillment:order-7", stale))
	_, ok, err = guard.Acquire(ctx, "fulfillment:order-7", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "stale release must not free the newer holder")

	require.NoError(t, guard.Release(ctx, "fulfillment:order-7", fresh))
	_, ok, err = guard.Acquire(ctx, "fulfillment:order-7", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInMemoryGuard_ConcurrentAcquire(t *testing.T) {
	guard := NewInMemoryGuard()
	defer guard.Close()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := guard.Acquire(context.Background(), "order-race", time.Minute)
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestInMemoryGuard_Cleanup(t *testing.T) {
	guard := NewInMemoryGuard()
	defer guard.Close()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	guard.now = func() time.Time { return now }

	ctx := context.Background()
	_, _, _ = guard.Acquire(ctx, "short", 5*time.Second)
	_, _, _ = guard.Acquire(ctx, "long", time.Hour)
	assert.Equal(t, 2, guard.Size())

	now = now.Add(10 * time.Second)
	guard.cleanup()

	assert.Equal(t, 1, guard.Size())
}

func TestInMemoryGuard_CloseIdempotent(t *testing.T) {
	guard := NewInMemoryGuard()
	assert.NoError(t, guard.Close())
	assert.NoError(t, guard.Close())
}
