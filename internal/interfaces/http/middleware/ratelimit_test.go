package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// recordingLimiter 记录限流键与上限
type recordingLimiter struct {
	keys    []string
	limits  []int
	allow   bool
	failErr error
}

func (l *recordingLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	l.limits = append(l.limits, limit)
	if l.failErr != nil {
		return false, l.failErr
	}
	return l.allow, nil
}

func newRateLimitEngine(cfg RateLimitConfig, limiter RateLimiter, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handlers := []gin.HandlerFunc{}
	if userID != "" {
		handlers = append(handlers, func(c *gin.Context) {
			c.Set("user_id", userID)
		})
	}
	handlers = append(handlers, RateLimit(cfg, limiter), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	engine.POST("/v1/images/generate", handlers...)
	return engine
}

func TestRateLimitKeysByUser(t *testing.T) {
	limiter := &recordingLimiter{allow: true}
	engine := newRateLimitEngine(RateLimitConfig{Enabled: true, RequestsPerSecond: 10}, limiter, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/images/generate", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "ratelimit:user-1:/v1/images/generate" {
		t.Errorf("limiter keys = %v, want user-keyed", limiter.keys)
	}
}

func TestRateLimitKeysByClientIPWhenAnonymous(t *testing.T) {
	limiter := &recordingLimiter{allow: true}
	engine := newRateLimitEngine(RateLimitConfig{Enabled: true, RequestsPerSecond: 10}, limiter, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/images/generate", nil)
	req.RemoteAddr = "203.0.113.7:4321"
	engine.ServeHTTP(w, req)

	if len(limiter.keys) != 1 || limiter.keys[0] != "ratelimit:203.0.113.7:/v1/images/generate" {
		t.Errorf("limiter keys = %v, want ip-keyed", limiter.keys)
	}
}

func TestRateLimitAppliesBurstHeadroom(t *testing.T) {
	limiter := &recordingLimiter{allow: true}
	engine := newRateLimitEngine(RateLimitConfig{Enabled: true, RequestsPerSecond: 10, Burst: 5}, limiter, "user-1")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/images/generate", nil))

	if len(limiter.limits) != 1 || limiter.limits[0] != 15 {
		t.Errorf("limiter limits = %v, want [15]", limiter.limits)
	}
}

func TestRateLimitRejectsWith429(t *testing.T) {
	limiter := &recordingLimiter{allow: false}
	engine := newRateLimitEngine(RateLimitConfig{Enabled: true, RequestsPerSecond: 1}, limiter, "user-1")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/images/generate", nil))

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", w.Code)
	}
}

func TestRateLimitFailsOpenOnLimiterError(t *testing.T) {
	limiter := &recordingLimiter{failErr: errors.New("redis down")}
	engine := newRateLimitEngine(RateLimitConfig{Enabled: true, RequestsPerSecond: 1}, limiter, "user-1")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/images/generate", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when limiter is unavailable", w.Code)
	}
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	limiter := &recordingLimiter{allow: false}
	engine := newRateLimitEngine(RateLimitConfig{Enabled: false}, limiter, "user-1")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/images/generate", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if len(limiter.keys) != 0 {
		t.Errorf("limiter should not be consulted when disabled, keys = %v", limiter.keys)
	}
}
