package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LoginLimiter throttles login attempts per client address using a Redis
// counter with a fixed window. It fails open: an unreachable Redis never
// locks students out.
type LoginLimiter struct {
	client   *redis.Client
	logger   *zap.Logger
	attempts int
	window   time.Duration
}

// NewLoginLimiter builds a limiter. A nil client disables limiting.
func NewLoginLimiter(client *redis.Client, logger *zap.Logger, attempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{client: client, logger: logger, attempts: attempts, window: window}
}

// Allow reports whether another login attempt from addr is permitted.
func (l *LoginLimiter) Allow(ctx context.Context, scope, addr string) bool {
	if l == nil || l.client == nil || l.attempts <= 0 {
		return true
	}

	key := fmt.Sprintf("login_attempts:%s:%s", scope, addr)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("rate limiter unavailable", zap.Error(err))
		return true
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("rate limiter expire failed", zap.Error(err))
		}
	}
	return count <= int64(l.attempts)
}
