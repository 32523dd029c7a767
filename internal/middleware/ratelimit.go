package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/cadence/internal/errors"
	"github.com/zfogg/cadence/internal/logger"
	"github.com/zfogg/cadence/internal/metrics"
	"github.com/zfogg/cadence/internal/util"
	"go.uber.org/zap"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
}

// DefaultRateLimitConfig returns the limits used when none are configured
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:  100,
		Window: time.Minute,
	}
}

// WindowCounter counts hits per key in fixed windows.
// cache.RedisClient implements it for multi-instance deployments.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)
}

// RateLimit rejects clients that exceed cfg.Limit requests per cfg.Window.
// Clients are keyed by authenticated user id when present, otherwise by IP.
// If the counter fails the request is rejected with 503.
func RateLimit(counter WindowCounter, cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limit <= 0 || cfg.Window <= 0 {
		cfg = DefaultRateLimitConfig()
	}
	limit := strconv.Itoa(cfg.Limit)
	m := metrics.Get()

	return func(c *gin.Context) {
		key := "rate_limit:ip:" + c.ClientIP()
		if userID := c.GetString("user_id"); userID != "" {
			key = "rate_limit:user:" + userID
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		count, remaining, err := counter.IncrWindow(ctx, key, cfg.Window)
		cancel()
		if err != nil {
			logger.Log.Error("Rate limit check failed", zap.String("key", key), zap.Error(err))
			util.RespondWithAPIError(c, errors.ServiceUnavailable("rate limiter").Wrap(err))
			return
		}

		left := cfg.Limit - int(count)
		if left < 0 {
			left = 0
		}
		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(left))

		if count > int64(cfg.Limit) {
			retryAfter := int(math.Ceil(remaining.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			m.RateLimitExceededTotal.WithLabelValues(c.FullPath()).Inc()
			logger.Log.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.Int64("count", count),
				zap.Int("limit", cfg.Limit),
			)
			util.RespondWithAPIError(c, errors.RateLimited(""))
			return
		}

		c.Next()
	}
}

// MemoryCounter is an in-process WindowCounter for single-instance runs and tests
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

// NewMemoryCounter creates an empty in-memory counter
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

// IncrWindow implements WindowCounter
func (mc *MemoryCounter) IncrWindow(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := mc.now()
	w, ok := mc.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		mc.windows[key] = w
		mc.evictExpired(now)
	}
	w.count++
	return w.count, w.resetAt.Sub(now), nil
}

// evictExpired drops finished windows; callers hold mu
func (mc *MemoryCounter) evictExpired(now time.Time) {
	for k, w := range mc.windows {
		if !now.Before(w.resetAt) {
			delete(mc.windows, k)
		}
	}
}
