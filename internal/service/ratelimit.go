package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter decides whether a caller identified by key may proceed.
type RateLimiter interface {
	Allow(key string) bool
}

// TokenBucket is an in-memory per-key rate limiter. It is safe for
// concurrent use. Keys idle for ten minutes are forgotten.
type TokenBucket struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	rate     rate.Limit
	burst    int
	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	limiter *rate.Limiter
	last    time.Time
}

// NewTokenBucket allows burst requests per key, refilling at perSecond
// tokens per second. It starts a background goroutine that evicts stale
// keys until Stop is called.
func NewTokenBucket(perSecond float64, burst int) *TokenBucket {
	tb := &TokenBucket{
		limiters: make(map[string]*visitor),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		done:     make(chan struct{}),
	}
	go tb.cleanup()
	return tb
}

// NewWindowTokenBucket spreads limit requests evenly across window.
func NewWindowTokenBucket(limit int, window time.Duration) *TokenBucket {
	return NewTokenBucket(float64(limit)/window.Seconds(), limit)
}

// Allow consumes one token for key and reports whether one was available.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	v, ok := tb.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(tb.rate, tb.burst)}
		tb.limiters[key] = v
	}
	v.last = time.Now()
	tb.mu.Unlock()

	return v.limiter.Allow()
}

// Stop ends the cleanup goroutine.
func (tb *TokenBucket) Stop() {
	tb.stopOnce.Do(func() { close(tb.done) })
}

func (tb *TokenBucket) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-tb.done:
			return
		case <-ticker.C:
			tb.mu.Lock()
			cutoff := time.Now().Add(-10 * time.Minute)
			for key, v := range tb.limiters {
				if v.last.Before(cutoff) {
					delete(tb.limiters, key)
				}
			}
			tb.mu.Unlock()
		}
	}
}

// RedisRateLimiter is a fixed-window counter shared by every instance
// pointing at the same Redis. Redis errors let the request through.
type RedisRateLimiter struct {
	client  *redis.Client
	prefix  string
	limit   int
	window  time.Duration
	timeout time.Duration
}

// NewRedisRateLimiter wraps client. limit requests are allowed per key per window.
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisRateLimiter{
		client:  client,
		prefix:  "outreach:ratelimit:",
		limit:   limit,
		window:  window,
		timeout: 250 * time.Millisecond,
	}
}

func (rl *RedisRateLimiter) Allow(key string) bool {
	if rl.limit <= 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), rl.timeout)
	defer cancel()

	redisKey := rl.prefix + key
	count, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		slog.Error("redis rate limiter error", "op", "incr", "error", err)
		return true
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, redisKey, rl.window).Err(); err != nil {
			slog.Error("redis rate limiter error", "op", "expire", "error", err)
		}
	}
	return int(count) <= rl.limit
}
