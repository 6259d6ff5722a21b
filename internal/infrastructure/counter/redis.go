package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gkbsz/leadgate/internal/infrastructure/config"
)

// redisStore implements Store against a redis server.
type redisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore creates a redis-backed counter store and verifies
// connectivity before returning.
func NewRedisStore(cfg config.RedisConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info("redis counter store initialized",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB))

	return &redisStore{client: client, logger: logger}, nil
}

func (r *redisStore) Incr(ctx context.Context, key string) (int64, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		r.logger.Error("redis incr failed", zap.String("key", key), zap.Error(err))
		return 0, fmt.Errorf("redis incr failed: %w", err)
	}
	return count, nil
}

func (r *redisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
		r.logger.Error("redis expire failed",
			zap.String("key", key),
			zap.Duration("ttl", ttl),
			zap.Error(err))
		return fmt.Errorf("redis expire failed: %w", err)
	}
	return nil
}

func (r *redisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		r.logger.Error("redis ttl failed", zap.String("key", key), zap.Error(err))
		return 0, fmt.Errorf("redis ttl failed: %w", err)
	}
	return ttl, nil
}

func (r *redisStore) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis close failed: %w", err)
	}
	return nil
}
