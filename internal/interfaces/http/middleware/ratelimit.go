package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is an in-memory fixed-window limiter keyed by caller.
// State lives in the process, so limits apply per instance rather than
// across a fleet.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	callers map[string]*callerWindow
}

type callerWindow struct {
	count   int
	startAt time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window
// and starts a background sweep of idle callers.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		callers: make(map[string]*callerWindow),
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-2 * rl.window)
		rl.mu.Lock()
		for key, cw := range rl.callers {
			if cw.startAt.Before(cutoff) {
				delete(rl.callers, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Take consumes one request slot for key. It reports whether the
// request is allowed and how many slots remain in the current window.
func (rl *RateLimiter) Take(key string) (allowed bool, remaining int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cw, ok := rl.callers[key]
	if !ok || now.Sub(cw.startAt) >= rl.window {
		rl.callers[key] = &callerWindow{count: 1, startAt: now}
		return true, rl.limit - 1
	}

	if cw.count >= rl.limit {
		return false, 0
	}
	cw.count++
	return true, rl.limit - cw.count
}

// RateLimit enforces limiter per client IP, scoped by tenant when the
// X-Tenant-ID header is present.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if tenantID := c.GetHeader("X-Tenant-ID"); tenantID != "" {
			key = tenantID + ":" + key
		}

		allowed, remaining := limiter.Take(key)
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMIT_EXCEEDED",
					"message": "Too many requests. Please try again later.",
				},
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}
