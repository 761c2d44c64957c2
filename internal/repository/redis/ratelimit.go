package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "ratelimit:"

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimiter counts requests per caller in fixed one-minute windows.
type RateLimiter struct {
	client *Client
	limit  int64
}

// NewRateLimiter creates a rate limiter allowing requestsPerMinute
// plus a burst allowance per caller key.
func NewRateLimiter(client *Client, requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  int64(requestsPerMinute + burst),
	}
}

// window computes the fixed one-minute window containing now. The
// window start keys the counter, so the reported reset time is the
// moment the counter actually rotates.
func window(now time.Time) (suffix string, resetAt time.Time) {
	start := now.Truncate(time.Minute)
	return strconv.FormatInt(start.Unix(), 10), start.Add(time.Minute)
}

// Allow records one request for key and reports whether it fits in
// the current window.
func (r *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	suffix, resetAt := window(time.Now())
	fullKey := rateLimitPrefix + key + ":" + suffix

	pipe := r.client.rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, fullKey)
	// Expiry only cleans the key up once its window has passed.
	pipe.ExpireNX(ctx, fullKey, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return Decision{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	count := incrCmd.Val()
	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= r.limit,
		Remaining: int(remaining),
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the current window for a caller key.
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	suffix, _ := window(time.Now())
	return r.client.rdb.Del(ctx, rateLimitPrefix+key+":"+suffix).Err()
}
