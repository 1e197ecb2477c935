package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/attendance-api/internal/models"
)

type rateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimitRepository keeps GCRA rate limit state in Redis.
type RateLimitRepository struct {
	limiter rateLimiter
	prefix  string
}

// NewRateLimitRepository constructs a rate limit repository.
func NewRateLimitRepository(client redis.Cmdable, prefix string) *RateLimitRepository {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RateLimitRepository{limiter: redis_rate.NewLimiter(client), prefix: prefix}
}

// Allow spends one request of key's allowance of requests per window.
func (r *RateLimitRepository) Allow(ctx context.Context, key string, requests int, window time.Duration) (models.RateDecision, error) {
	fullKey := fmt.Sprintf("%s:%s", r.prefix, key)
	res, err := r.limiter.Allow(ctx, fullKey, redis_rate.Limit{Rate: requests, Burst: requests, Period: window})
	if err != nil {
		return models.RateDecision{}, fmt.Errorf("rate limit %s: %w", fullKey, err)
	}

	decision := models.RateDecision{Allowed: res.Allowed > 0, Remaining: res.Remaining}
	if !decision.Allowed {
		decision.RetryAfter = res.RetryAfter
	}
	return decision, nil
}
