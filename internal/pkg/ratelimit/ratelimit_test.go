package ratelimit

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	if os.Getenv("COURSEBITE_INTEGRATION") != "1" {
		t.Skip("set COURSEBITE_INTEGRATION=1 to run redis integration tests")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint:errcheck // best effort
		container.Terminate(context.Background())
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedis_AllowOncePerWindow(t *testing.T) {
	limiter := NewRedis(newRedisClient(t), "")
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "otp_sent_09123456789", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = limiter.Allow(ctx, "otp_sent_09123456789", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "otp_sent_09120000000", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "other keys are independent")

	remaining, err := limiter.Remaining(ctx, "otp_sent_09123456789")
	require.NoError(t, err)
	assert.Greater(t, remaining, 50*time.Second)
}

func TestRedis_ConcurrentSingleWinner(t *testing.T) {
	limiter := NewRedis(newRedisClient(t), "")
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := limiter.Allow(ctx, "otp_sent_09111111111", time.Minute)
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestRedis_ReleaseAndExpiry(t *testing.T) {
	limiter := NewRedis(newRedisClient(t), "")
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, limiter.Release(ctx, "k"))

	ok, err = limiter.Allow(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Eventually(t, func() bool {
		ok, err := limiter.Allow(ctx, "k", time.Second)
		return err == nil && ok
	}, 5*time.Second, 200*time.Millisecond)
}

func TestRedis_InvalidWindow(t *testing.T) {
	limiter := NewRedis(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "")
	_, err := limiter.Allow(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
