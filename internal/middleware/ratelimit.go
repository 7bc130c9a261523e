// ratelimit.go limits how often each user may start an extraction.
//
// Each user gets a token bucket from golang.org/x/time/rate holding
// `perHour` tokens that refill evenly over the hour. Each request consumes
// one token; an empty bucket means 429 Too Many Requests. Bursts up to the
// hourly budget are allowed, then requests are smoothed out.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Shimizu-Technology/paperhub-api/internal/models"
)

// RateLimiter tracks request rates per user.
type RateLimiter struct {
	mu      sync.Mutex
	perHour int
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing perHour requests per user.
// Stale buckets are swept until ctx is done.
func NewRateLimiter(ctx context.Context, perHour int) *RateLimiter {
	rl := &RateLimiter{
		perHour: perHour,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	go rl.cleanup(ctx)
	return rl
}

// RateLimit returns Gin middleware that enforces the limit. It must run
// after JWTAuth; anonymous callers are keyed by client IP.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.perHour <= 0 {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if user := GetUser(c); user != nil {
			key = "user:" + user.ID
		}

		allowed, remaining := rl.allow(key)
		c.Header("X-RateLimit-Limit", fmt.Sprint(rl.perHour))
		c.Header("X-RateLimit-Remaining", fmt.Sprint(remaining))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Rate limit exceeded. Try again later.",
				Code:    http.StatusTooManyRequests,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// allow consumes a token for key and reports the tokens left.
func (rl *RateLimiter) allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(float64(rl.perHour)/3600.0), rl.perHour)}
		rl.buckets[key] = b
	}
	b.lastSeen = now

	if !b.limiter.AllowN(now, 1) {
		return false, 0
	}
	remaining := int(b.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return true, remaining
}

// cleanup periodically removes buckets unused for over an hour; by then
// they have refilled and are indistinguishable from new ones.
func (rl *RateLimiter) cleanup(ctx context.Context) {
	// Go Pattern: time.Ticker sends values at regular intervals.
	// Always defer ticker.Stop() to release resources.
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > time.Hour {
			delete(rl.buckets, key)
		}
	}
}
