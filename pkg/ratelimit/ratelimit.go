// Package ratelimit implements a Redis-backed fixed-window rate limiter for
// the site's form and command endpoints. The Redis connection is optional;
// without one the limiter is simply not installed.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	logger "github.com/sanctyr/site/middleware/log"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	// Allow reports whether one more request under key fits within limit
	// requests per window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Reset clears the counter for a key.
	Reset(ctx context.Context, key string) error
}

// RedisLimiter counts requests per key in Redis using INCR + EXPIRE so the
// window survives process restarts and is shared across replicas.
type RedisLimiter struct {
	client   *redis.Client
	logger   *logger.Logger
	failOpen bool // allow requests when Redis is unavailable
}

// NewRedisLimiter creates a limiter. With failOpen, Redis outages log a
// warning and let requests through instead of rejecting them.
func NewRedisLimiter(client *redis.Client, log *logger.Logger, failOpen bool) *RedisLimiter {
	return &RedisLimiter{client: client, logger: log, failOpen: failOpen}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		if l.failOpen {
			l.logger.Warn("rate limiter unavailable, failing open",
				zap.String("key", key), zap.Error(err))
			return true, nil
		}
		return false, fmt.Errorf("incrementing rate limit counter: %w", err)
	}

	// First hit in the window starts the clock.
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, window).Err(); err != nil {
			l.logger.Warn("setting rate limit expiry failed",
				zap.String("key", key), zap.Error(err))
		}
	}

	return count <= int64(limit), nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, fmt.Sprintf("ratelimit:%s", key)).Err()
}
