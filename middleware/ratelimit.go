package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"genuverity-backend/metrics"
	"genuverity-backend/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const sweepInterval = 10 * time.Minute

// RateLimiter enforces an hourly analysis budget per tier. Each caller (API
// key id, or client IP for anonymous callers) gets its own token bucket
// holding a full hour of requests.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHour  map[models.Tier]int
	logger   *zap.Logger
}

// NewRateLimiter creates a limiter; tiers with a budget <= 0 are unlimited
func NewRateLimiter(perHour map[models.Tier]int, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHour:  perHour,
		logger:   logger,
	}
}

// Middleware rejects requests over budget with 429 and Retry-After.
// It must run after APIKey.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tier := CallerTier(c)
		budget := l.perHour[tier]
		if budget <= 0 {
			c.Next()
			return
		}

		caller := c.ClientIP()
		if key := CallerKey(c); key != nil {
			caller = key.ID.String()
		}

		ok, wait := l.reserve(string(tier)+":"+caller, budget)
		if ok {
			c.Next()
			return
		}

		metrics.RateLimited.WithLabelValues(string(tier)).Inc()
		l.logger.Warn("rate limit exceeded",
			zap.String("tier", string(tier)),
			zap.String("caller", caller),
			zap.String("path", c.FullPath()),
		)
		retryAfter := int(math.Ceil(wait.Seconds()))
		c.Header("Retry-After", fmt.Sprint(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": gin.H{
				"code":    "RATE_LIMITED",
				"message": fmt.Sprintf("Rate limit of %d analyses per hour exceeded for tier %s", budget, tier),
				"details": gin.H{
					"tier":                tier,
					"limit_per_hour":      budget,
					"retry_after_seconds": retryAfter,
				},
			},
		})
	}
}

// reserve takes one token, or reports how long until one is available
func (l *RateLimiter) reserve(key string, budget int) (bool, time.Duration) {
	r := l.getLimiter(key, budget).Reserve()
	if !r.OK() {
		return false, time.Hour
	}
	if d := r.Delay(); d > 0 {
		r.Cancel()
		return false, d
	}
	return true, 0
}

func (l *RateLimiter) getLimiter(key string, budget int) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[key]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Every(time.Hour/time.Duration(budget)), budget)
	l.limiters[key] = limiter
	return limiter
}

// Run drops idle buckets until ctx is done. A bucket is idle once it has refilled.
func (l *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.sweep(now)
		}
	}
}

func (l *RateLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, limiter := range l.limiters {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(l.limiters, key)
		}
	}
}
