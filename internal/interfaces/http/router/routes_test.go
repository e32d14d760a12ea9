package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"ai-gallery-api/internal/interfaces/http/handler"
	"ai-gallery-api/internal/interfaces/http/middleware"
	"ai-gallery-api/pkg/utils"
)

type stubVerifier struct {
	userID string
}

func (v *stubVerifier) VerifyAccess(token string) (*utils.Claims, error) {
	return &utils.Claims{UserID: v.userID, Username: "alice", Type: "access"}, nil
}

// denyingLimiter 拒绝所有请求并记录限流键，请求不会到达业务处理器
type denyingLimiter struct {
	keys []string
}

func (l *denyingLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return false, nil
}

func newV1Engine(limiter middleware.RateLimiter, verifier middleware.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := Handlers{
		Health:  handler.NewHealthHandler(nil, nil),
		Auth:    handler.NewAuthHandler(nil),
		Image:   handler.NewImageHandler(nil, nil),
		Comment: handler.NewCommentHandler(nil),
	}
	rateLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 1,
	}, limiter)
	RegisterV1Routes(engine.Group("/v1"), h, middleware.Auth(verifier), rateLimit)
	return engine
}

// 认证路由上限流在认证之后执行，限流键按用户维度
func TestAuthenticatedRoutesRateLimitPerUser(t *testing.T) {
	limiter := &denyingLimiter{}
	engine := newV1Engine(limiter, &stubVerifier{userID: "user-1"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/images/generate", nil)
	req.Header.Set("Authorization", "Bearer token")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if len(limiter.keys) != 1 || !strings.Contains(limiter.keys[0], ":user-1:") {
		t.Errorf("limiter keys = %v, want user-keyed", limiter.keys)
	}
}

func TestPublicRoutesRateLimitPerClientIP(t *testing.T) {
	limiter := &denyingLimiter{}
	engine := newV1Engine(limiter, &stubVerifier{userID: "user-1"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/images", nil)
	req.RemoteAddr = "203.0.113.7:4321"
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if len(limiter.keys) != 1 || !strings.Contains(limiter.keys[0], ":203.0.113.7:") {
		t.Errorf("limiter keys = %v, want ip-keyed", limiter.keys)
	}
}
