package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/models"
)

type stubLimiter struct {
	keys   []string
	limits []redis_rate.Limit
	result *redis_rate.Result
	err    error
}

func (s *stubLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	s.keys = append(s.keys, key)
	s.limits = append(s.limits, limit)
	return s.result, s.err
}

func TestRateLimitAllowPrefixesKeyAndBuildsLimit(t *testing.T) {
	stub := &stubLimiter{result: &redis_rate.Result{Allowed: 1, Remaining: 4}}
	repo := &RateLimitRepository{limiter: stub, prefix: "auth"}

	decision, err := repo.Allow(context.Background(), "login:10.0.0.1", 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, models.RateDecision{Allowed: true, Remaining: 4}, decision)
	assert.Equal(t, []string{"auth:login:10.0.0.1"}, stub.keys)
	assert.Equal(t, redis_rate.Limit{Rate: 5, Burst: 5, Period: time.Minute}, stub.limits[0])
}

func TestRateLimitAllowReportsRetryAfter(t *testing.T) {
	stub := &stubLimiter{result: &redis_rate.Result{Allowed: 0, Remaining: 0, RetryAfter: 12 * time.Second}}
	repo := &RateLimitRepository{limiter: stub, prefix: "auth"}

	decision, err := repo.Allow(context.Background(), "login:10.0.0.1", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 12*time.Second, decision.RetryAfter)
}

func TestRateLimitAllowWrapsStoreError(t *testing.T) {
	repo := &RateLimitRepository{limiter: &stubLimiter{err: errors.New("connection refused")}, prefix: "auth"}

	_, err := repo.Allow(context.Background(), "login:10.0.0.1", 5, time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth:login:10.0.0.1")
}

func TestNewRateLimitRepositoryDefaultsPrefix(t *testing.T) {
	repo := NewRateLimitRepository(nil, "")
	assert.Equal(t, "ratelimit", repo.prefix)
}
