package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Take(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 2; i >= 0; i-- {
		allowed, remaining := rl.Take("10.0.0.1")
		assert.True(t, allowed)
		assert.Equal(t, i, remaining)
	}

	allowed, remaining := rl.Take("10.0.0.1")
	assert.False(t, allowed)
	assert.Zero(t, remaining)
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	allowed, _ := rl.Take("10.0.0.1")
	require.True(t, allowed)
	allowed, _ = rl.Take("10.0.0.1")
	require.False(t, allowed)

	allowed, _ = rl.Take("10.0.0.2")
	assert.True(t, allowed)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)

	allowed, _ := rl.Take("10.0.0.1")
	require.True(t, allowed)
	allowed, _ = rl.Take("10.0.0.1")
	require.False(t, allowed)

	time.Sleep(30 * time.Millisecond)

	allowed, _ = rl.Take("10.0.0.1")
	assert.True(t, allowed)
}

func TestRateLimiter_ConcurrentTake(t *testing.T) {
	rl := NewRateLimiter(50, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := rl.Take("shared"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowedCount)
}

func newRateLimitedRouter(limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RateLimit(NewRateLimiter(limit, time.Minute)))
	engine.GET("/returns", func(c *gin.Context) { c.Status(http.StatusOK) })
	return engine
}

func TestRateLimit_AllowsWithinLimit(t *testing.T) {
	engine := newRateLimitedRouter(2)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/returns", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	engine := newRateLimitedRouter(1)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/returns", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/returns", nil))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestRateLimit_TenantHeaderScopesKey(t *testing.T) {
	engine := newRateLimitedRouter(1)

	reqA := httptest.NewRequest(http.MethodGet, "/returns", nil)
	reqA.Header.Set("X-Tenant-ID", "tenant-a")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, reqA)
	require.Equal(t, http.StatusOK, w.Code)

	// A different tenant from the same IP gets its own window.
	reqB := httptest.NewRequest(http.MethodGet, "/returns", nil)
	reqB.Header.Set("X-Tenant-ID", "tenant-b")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, reqB)
	assert.Equal(t, http.StatusOK, w.Code)
}
