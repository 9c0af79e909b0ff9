// Package ratelimit caps how often a key may perform an action.
package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// New returns a Redis-backed per-minute limiter, or one that allows everything
// when client is nil or perMinute is not positive.
func New(client redis.UniversalClient, perMinute int) Limiter {
	if client == nil || perMinute <= 0 {
		return Unlimited{}
	}
	return &RedisLimiter{limiter: redis_rate.NewLimiter(client), limit: redis_rate.PerMinute(perMinute)}
}

type RedisLimiter struct {
	limiter *redis_rate.Limiter
	limit   redis_rate.Limit
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	res, err := l.limiter.Allow(ctx, key, l.limit)
	if err != nil {
		return Result{}, err
	}
	return Result{Allowed: res.Allowed > 0, RetryAfter: res.RetryAfter}, nil
}

type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (Result, error) {
	return Result{Allowed: true}, nil
}
