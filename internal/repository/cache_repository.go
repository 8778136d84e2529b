package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheRepository wraps Redis for the auth throttles: OTP resend cooldowns
// and failed-login counters. A nil client degrades to no throttling, which
// keeps the auth path available when Redis is down.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, logger: logger}
}

// AcquireCooldown atomically claims a cooldown slot for the key. It returns
// false when the cooldown is still active.
func (r *CacheRepository) AcquireCooldown(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return true, nil
	}
	ok, err := r.client.SetNX(ctx, key, time.Now().UTC().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}

// IncrementAttempts bumps a failed-attempt counter, setting the window TTL on
// the first increment, and returns the new count.
func (r *CacheRepository) IncrementAttempts(ctx context.Context, key string, window time.Duration) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			r.logger.Warn("failed to set attempt window", zap.String("key", key), zap.Error(err))
		}
	}
	return count, nil
}

// ResetAttempts clears a failed-attempt counter after a successful login.
func (r *CacheRepository) ResetAttempts(ctx context.Context, key string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
