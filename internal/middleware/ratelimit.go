package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/response"
)

// Limiter spends one request of a key's allowance.
type Limiter interface {
	Allow(ctx context.Context, key string, requests int, window time.Duration) (models.RateDecision, error)
}

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	Scope    string
	Requests int
	Window   time.Duration
	// OnLimited is called for every rejected request.
	OnLimited func()
}

// RateLimit caps requests per client IP. Limiter failures let the request
// through.
func RateLimit(limiter Limiter, cfg RateLimitConfig, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	if limiter == nil || cfg.Requests <= 0 || cfg.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", cfg.Scope, c.ClientIP())
		decision, err := limiter.Allow(c.Request.Context(), key, cfg.Requests, cfg.Window)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.Requests))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", max(decision.Remaining, 0)))

		if !decision.Allowed {
			retry := decision.RetryAfter
			if retry <= 0 {
				retry = cfg.Window
			}
			c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(retry.Seconds()))))
			if cfg.OnLimited != nil {
				cfg.OnLimited()
			}
			response.Abort(c, appErrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}
