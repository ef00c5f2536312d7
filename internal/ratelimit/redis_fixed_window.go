package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisFixedWindow counts requests in Redis, keyed by the current window
// number, so multiple processes share one quota. Atomicity comes from INCR;
// the window boundary is derived from wall-clock time rather than stored
// per bucket.
type RedisFixedWindow struct {
	client *redis.Client
}

func NewRedisFixedWindow(client *redis.Client) *RedisFixedWindow {
	return &RedisFixedWindow{client: client}
}

func (r *RedisFixedWindow) Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	windowSecs := int64(window.Seconds())
	if windowSecs < 1 {
		windowSecs = 1
	}

	now := time.Now()
	currentWindow := now.Unix() / windowSecs
	redisKey := fmt.Sprintf("rate_limit:%s:%d", key, currentWindow)

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Result{}, err
	}
	if count == 1 {
		r.client.Expire(ctx, redisKey, window)
	}

	resetAt := time.Unix((currentWindow+1)*windowSecs, 0)
	result := Result{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: maxInt(0, limit-int(count)),
		ResetAt:   resetAt,
	}
	if !result.Allowed {
		result.RetryAfterSeconds = retryAfterSeconds(resetAt.Sub(now))
	}
	return result, nil
}
