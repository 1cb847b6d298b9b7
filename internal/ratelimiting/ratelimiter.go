package ratelimiting

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RequestLimiter blocks until a request is allowed to be sent
type RequestLimiter interface {
	Wait(ctx context.Context) error
}

type RefillPerSecond float64
type BurstSize int

type tokenBucketRequestLimiter struct {
	limiter *rate.Limiter
}

func (l *tokenBucketRequestLimiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func NewTokenBucketRequestLimiter(refillPerSecond RefillPerSecond, burstSize BurstSize) RequestLimiter {
	return &tokenBucketRequestLimiter{
		limiter: rate.NewLimiter(rate.Limit(refillPerSecond), int(burstSize)),
	}
}

type unlimitedRequestLimiter struct{}

func (unlimitedRequestLimiter) Wait(ctx context.Context) error {
	return ctx.Err()
}

func NewUnlimitedRequestLimiter() RequestLimiter {
	return unlimitedRequestLimiter{}
}
