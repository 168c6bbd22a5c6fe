package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter decides whether an action identified by key may proceed.
type Limiter interface {
	// Allow consumes one token from key's bucket.
	// Returns true if allowed, false if the limit for the window is exhausted.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// AllowN consumes n tokens at once.
	AllowN(ctx context.Context, key string, n int, limit int, window time.Duration) (bool, error)
}

// Rule is a limit over a window.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Disabled reports whether the rule lets everything through.
func (r Rule) Disabled() bool {
	return r.Limit <= 0 || r.Window <= 0
}

// PerMinute builds a one-minute rule.
func PerMinute(limit int) Rule {
	return Rule{Limit: limit, Window: time.Minute}
}

// RedisLimiter counts requests in fixed windows with Redis INCRBY + EXPIRE.
// It shares state across processes that use the same Redis.
type RedisLimiter struct {
	redisClient *redis.Client
	logger      *zap.Logger
	fallback    bool // If true, allow requests when Redis is unavailable (fail-open)
	now         func() time.Time
}

// NewRedisLimiter creates a Redis-backed limiter.
//
// Parameters:
//   - redisClient: Redis client for storing counters
//   - logger: Logger for recording limit events
//   - fallback: If true, allows requests when Redis fails (fail-open strategy)
func NewRedisLimiter(redisClient *redis.Client, logger *zap.Logger, fallback bool) *RedisLimiter {
	return &RedisLimiter{
		redisClient: redisClient,
		logger:      logger,
		fallback:    fallback,
		now:         time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return l.AllowN(ctx, key, 1, limit, window)
}

func (l *RedisLimiter) AllowN(ctx context.Context, key string, n int, limit int, window time.Duration) (bool, error) {
	bucketKey := bucketKey(key, l.now(), window)

	pipe := l.redisClient.Pipeline()
	incrCmd := pipe.IncrBy(ctx, bucketKey, int64(n))
	pipe.Expire(ctx, bucketKey, window+time.Second) // 1s buffer

	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Error("rate limit check failed",
			zap.String("key", bucketKey),
			zap.Error(err),
		)
		if l.fallback {
			l.logger.Warn("rate limit check failed, allowing request (fail-open)",
				zap.String("key", key),
			)
			return true, nil
		}
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := incrCmd.Val()
	allowed := count <= int64(limit)
	if !allowed {
		l.logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", limit),
			zap.Duration("window", window),
		)
	}
	return allowed, nil
}

// MemoryLimiter is the in-process counterpart of RedisLimiter, used when the
// store is not backed by Redis. Each key only remembers its current window.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]memoryBucket
	logger  *zap.Logger
	now     func() time.Time
}

type memoryBucket struct {
	window string
	count  int64
}

func NewMemoryLimiter(logger *zap.Logger) *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[string]memoryBucket),
		logger:  logger,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return l.AllowN(ctx, key, 1, limit, window)
}

func (l *MemoryLimiter) AllowN(_ context.Context, key string, n int, limit int, window time.Duration) (bool, error) {
	current := bucketKey(key, l.now(), window)

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b.window != current {
		b = memoryBucket{window: current}
	}
	b.count += int64(n)
	l.buckets[key] = b

	allowed := b.count <= int64(limit)
	if !allowed {
		l.logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", b.count),
			zap.Int("limit", limit),
		)
	}
	return allowed, nil
}

// bucketKey generates a time-based bucket key for the fixed window containing now.
func bucketKey(key string, now time.Time, window time.Duration) string {
	var bucketTime int64

	switch {
	case window <= time.Minute:
		// For minute-based windows, use seconds as bucket
		bucketTime = now.Unix() / max(int64(window.Seconds()), 1)
	case window <= time.Hour:
		bucketTime = now.Unix() / 60 / int64(window.Minutes())
	default:
		bucketTime = now.Unix() / 3600 / int64(window.Hours())
	}

	return fmt.Sprintf("ratelimit:%s:%d", key, bucketTime)
}
