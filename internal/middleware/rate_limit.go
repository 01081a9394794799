package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/pageza/recipe-store/backend/internal/observability"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Decision is the result of a rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// RateLimiter decides whether a request identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisRateLimiter is a fixed-window counter shared through Redis, so every
// replica sees the same budget.
type RedisRateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	now    func() time.Time
}

// NewRedisRateLimiter creates a new rate limiter instance
func NewRedisRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RedisRateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit:recipes"
	}
	return &RedisRateLimiter{
		redis:  redisClient,
		config: config,
		now:    time.Now,
	}
}

// windowKey names the counter for one window. Millisecond resolution keeps
// sub-second windows apart.
func (rl *RedisRateLimiter) windowKey(key string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.UnixMilli())
}

// Allow increments the counter for key in the current window
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := rl.now().Truncate(rl.config.Window)
	redisKey := rl.windowKey(key, windowStart)

	// INCR and EXPIRE travel in one round trip
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := int(incrCmd.Val())
	return Decision{
		Allowed:   count <= rl.config.Limit,
		Limit:     rl.config.Limit,
		Remaining: max(rl.config.Limit-count, 0),
		Reset:     windowStart.Add(rl.config.Window),
	}, nil
}

// LocalRateLimiter is a per-key token bucket held in process memory. Limit
// tokens refill evenly over Window. Buckets idle for a full window are full
// again and get swept.
type LocalRateLimiter struct {
	config    RateLimitConfig
	now       func() time.Time
	mu        sync.Mutex
	limiters  map[string]*localBucket
	lastSweep time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalRateLimiter creates an in-process limiter.
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	if config.Limit < 1 {
		config.Limit = 1
	}
	return &LocalRateLimiter{
		config:    config,
		now:       time.Now,
		limiters:  make(map[string]*localBucket),
		lastSweep: time.Now(),
	}
}

func (rl *LocalRateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.config.Window {
		rl.sweep(now)
	}

	b, ok := rl.limiters[key]
	if !ok {
		every := rate.Every(rl.config.Window / time.Duration(rl.config.Limit))
		b = &localBucket{limiter: rate.NewLimiter(every, rl.config.Limit)}
		rl.limiters[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// sweep drops buckets unused for at least one window. Caller holds mu.
func (rl *LocalRateLimiter) sweep(now time.Time) {
	for key, b := range rl.limiters {
		if now.Sub(b.lastSeen) >= rl.config.Window {
			delete(rl.limiters, key)
		}
	}
	rl.lastSweep = now
}

func (rl *LocalRateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *LocalRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := rl.now()
	l := rl.limiter(key, now)
	allowed := l.AllowN(now, 1)
	tokens := int(l.TokensAt(now))

	reset := now
	if tokens < rl.config.Limit {
		missing := float64(rl.config.Limit) - l.TokensAt(now)
		reset = now.Add(time.Duration(missing / float64(l.Limit()) * float64(time.Second)))
	}
	return Decision{
		Allowed:   allowed,
		Limit:     rl.config.Limit,
		Remaining: max(tokens, 0),
		Reset:     reset,
	}, nil
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting per
// client IP. A failing limiter backend lets the request through.
func RateLimitMiddleware(limiter RateLimiter, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.Request.Method + " " + c.FullPath()
		decision, err := limiter.Allow(c.Request.Context(), route+":"+c.ClientIP())
		if err != nil {
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		// Set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.Reset.Unix(), 10))

		if !decision.Allowed {
			metrics.IncRateLimited(route)
			retryAfter := max(int(time.Until(decision.Reset).Seconds()), 1)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests", decision.Limit),
				"retry_after": retryAfter,
			})
			return
		}

		c.Next()
	}
}
