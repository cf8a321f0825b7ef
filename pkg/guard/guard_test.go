package guard

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuard_Exclusive(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	var acquired int32
	var holder atomic.Value
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, ok, err := g.TryAcquire(ctx, "user-1")
			assert.NoError(t, err)
			if ok {
				atomic.AddInt32(&acquired, 1)
				holder.Store(token)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), acquired)

	_, ok, _ := g.TryAcquire(ctx, "user-2")
	assert.True(t, ok, "other users are independent")

	require.NoError(t, g.Release(ctx, "user-1", holder.Load().(string)))
	_, ok, _ = g.TryAcquire(ctx, "user-1")
	assert.True(t, ok)
}

func TestMemoryGuard_MarkerOutlivesSlowIngestion(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	first, ok, err := g.TryAcquire(ctx, "u")
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(120 * time.Millisecond)

	_, ok, err = g.TryAcquire(ctx, "u")
	require.NoError(t, err)
	assert.False(t, ok, "marker must hold until released")

	require.NoError(t, g.Release(ctx, "u", first))
	_, ok, _ = g.TryAcquire(ctx, "u")
	assert.True(t, ok)
}

func TestMemoryGuard_ReleaseIgnoresStaleToken(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	first, ok, _ := g.TryAcquire(ctx, "u")
	require.True(t, ok)
	require.NoError(t, g.Release(ctx, "u", first))

	second, ok, _ := g.TryAcquire(ctx, "u")
	require.True(t, ok)

	// a repeated release from the first holder must not free the second
	require.NoError(t, g.Release(ctx, "u", first))
	_, ok, _ = g.TryAcquire(ctx, "u")
	assert.False(t, ok)

	require.NoError(t, g.Release(ctx, "u", second))
	_, ok, _ = g.TryAcquire(ctx, "u")
	assert.True(t, ok)
}

func TestRun_ReleasesOnError(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()
	boom := errors.New("decode failed")

	err := Run(ctx, g, "u", func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	_, ok, _ := g.TryAcquire(ctx, "u")
	assert.True(t, ok)
}

func TestRun_ReleasesOnPanic(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = Run(ctx, g, "u", func(ctx context.Context) error { panic("boom") })
	})

	_, ok, _ := g.TryAcquire(ctx, "u")
	assert.True(t, ok)
}

func TestRun_RejectsConcurrentUpload(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	started := make(chan struct{})
	finish := make(chan struct{})
	go func() {
		_ = Run(ctx, g, "u", func(ctx context.Context) error {
			close(started)
			<-finish
			return nil
		})
	}()
	<-started

	called := false
	err := Run(ctx, g, "u", func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrConcurrencyRejected)
	assert.False(t, called)
	close(finish)
}

func TestRedisGuard(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	g := NewRedisGuard(client, 5*time.Second)
	client.Del(ctx, "biomeai:upload:redis-test-user")

	token, ok, err := g.TryAcquire(ctx, "redis-test-user")
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = g.TryAcquire(ctx, "redis-test-user")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.Release(ctx, "redis-test-user", "not-the-owner"))
	_, ok, err = g.TryAcquire(ctx, "redis-test-user")
	require.NoError(t, err)
	assert.False(t, ok, "release with a foreign token keeps the marker")

	require.NoError(t, g.Release(ctx, "redis-test-user", token))
	_, ok, err = g.TryAcquire(ctx, "redis-test-user")
	require.NoError(t, err)
	assert.True(t, ok)
	client.Del(ctx, "biomeai:upload:redis-test-user")
}
