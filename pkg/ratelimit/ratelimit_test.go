package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/sanctyr/site/middleware/log"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestRedisLimiter_Allow(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewRedisLimiter(client, logger.NewNop(), false)

	ctx := context.Background()
	key := "ip:10.0.0.1:/api/v1/actions/partnership"
	limit := 5
	window := time.Minute

	for i := range limit {
		allowed, err := limiter.Allow(ctx, key, limit, window)
		assert.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, key, limit, window)
	assert.NoError(t, err)
	assert.False(t, allowed, "request beyond the limit should be denied")
}

func TestRedisLimiter_WindowExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewRedisLimiter(client, logger.NewNop(), false)

	ctx := context.Background()
	key := "ip:10.0.0.2"
	window := time.Minute

	_, err := limiter.Allow(ctx, key, 1, window)
	require.NoError(t, err)
	allowed, err := limiter.Allow(ctx, key, 1, window)
	require.NoError(t, err)
	assert.False(t, allowed)

	// a new window opens after expiry
	mr.FastForward(window + time.Second)
	allowed, err = limiter.Allow(ctx, key, 1, window)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisLimiter_Reset(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewRedisLimiter(client, logger.NewNop(), false)

	ctx := context.Background()
	key := "ip:10.0.0.3"

	_, err := limiter.Allow(ctx, key, 1, time.Minute)
	require.NoError(t, err)
	require.NoError(t, limiter.Reset(ctx, key))

	allowed, err := limiter.Allow(ctx, key, 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisLimiter_FailOpen(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	openLimiter := NewRedisLimiter(client, logger.NewNop(), true)
	allowed, err := openLimiter.Allow(context.Background(), "k", 1, time.Minute)
	assert.NoError(t, err)
	assert.True(t, allowed, "fail-open limiter must allow when redis is down")

	closedLimiter := NewRedisLimiter(client, logger.NewNop(), false)
	_, err = closedLimiter.Allow(context.Background(), "k", 1, time.Minute)
	assert.Error(t, err)
}
