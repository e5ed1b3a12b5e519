package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/sceneworks/scene/internal/config"
)

const keyCheckinUser = "checkin:user:%s"

// CheckinLimiter throttles check-in attempts per user. Without a Redis
// address it stays disabled and every request passes.
type CheckinLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewCheckinLimiter(cfg config.Config) *CheckinLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return &CheckinLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})

	rate := cfg.CheckinRatePerMinute / 60
	if rate <= 0 {
		rate = 1.0 / 6
	}
	burst := cfg.CheckinRateBurst
	if burst <= 0 {
		burst = 5
	}

	return &CheckinLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    rate,
		burst:   burst,
	}
}

func (l *CheckinLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Allow reports whether the user may attempt another check-in now.
func (l *CheckinLimiter) Allow(ctx context.Context, userID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyCheckinUser, strings.TrimSpace(userID)), l.rate, l.burst)
}
