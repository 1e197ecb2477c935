package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/models"
)

type memoryLimiter struct {
	counts map[string]int
	err    error
}

func (m *memoryLimiter) Allow(_ context.Context, key string, requests int, _ time.Duration) (models.RateDecision, error) {
	if m.err != nil {
		return models.RateDecision{}, m.err
	}
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[key]++
	if m.counts[key] > requests {
		return models.RateDecision{RetryAfter: 30 * time.Second}, nil
	}
	return models.RateDecision{Allowed: true, Remaining: requests - m.counts[key]}, nil
}

func newLimitedRouter(limiter Limiter, limited *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := RateLimitConfig{Scope: "login", Requests: 2, Window: time.Minute, OnLimited: func() { *limited++ }}
	r.POST("/login", RateLimit(limiter, cfg, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func postLogin(r http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitRejectsAfterLimit(t *testing.T) {
	limited := 0
	limiter := &memoryLimiter{}
	r := newLimitedRouter(limiter, &limited)

	assert.Equal(t, http.StatusOK, postLogin(r).Code)
	w := postLogin(r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = postLogin(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
	assert.Equal(t, 1, limited)
	assert.Contains(t, limiter.counts, "login:10.0.0.1")
}

func TestRateLimitFailsOpen(t *testing.T) {
	limited := 0
	r := newLimitedRouter(&memoryLimiter{err: errors.New("redis down")}, &limited)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, postLogin(r).Code)
	}
	assert.Zero(t, limited)
}

func TestRateLimitDisabledWithoutLimiter(t *testing.T) {
	limited := 0
	r := newLimitedRouter(nil, &limited)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, postLogin(r).Code)
	}
}
