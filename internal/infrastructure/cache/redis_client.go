// Package cache provides the Redis connection and the circuit breaker used by
// the image cache
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisClientName = "recipebook-image-cache"

// RedisOptions maps the redis configuration section onto client options
func RedisOptions(cfg *config.RedisConfig) *redis.UniversalOptions {
	return &redis.UniversalOptions{
		Addrs:           []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		ClientName:      redisClientName,
		Password:        cfg.Password,
		DB:              cfg.Database,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		PoolSize:        cfg.PoolSize,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolTimeout:     cfg.ReadTimeout + time.Second,
	}
}

// NewRedisClient connects to Redis and fails when the server does not answer
// a ping within the dial timeout
func NewRedisClient(cfg *config.RedisConfig, logger *zap.Logger) (redis.UniversalClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	opts := RedisOptions(cfg)
	client := redis.NewUniversalClient(opts)

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addrs[0], err)
	}

	logger.Named("redis").Info("Redis image cache connected",
		zap.String("addr", opts.Addrs[0]),
		zap.Int("database", cfg.Database),
		zap.Int("pool_size", cfg.PoolSize),
	)

	return client, nil
}
