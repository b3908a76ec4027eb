// Package redis provides the Redis backed cache repository
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/recipebook/internal/infrastructure/cache"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheRepository implements outbound.CacheRepository on Redis. Calls are
// guarded by a circuit breaker so an unavailable Redis fails fast.
type CacheRepository struct {
	client  redis.UniversalClient
	prefix  string
	breaker *cache.CircuitBreaker
	logger  *zap.Logger
}

// NewCacheRepository creates a new Redis cache repository
func NewCacheRepository(client redis.UniversalClient, prefix string, logger *zap.Logger) *CacheRepository {
	return &CacheRepository{
		client:  client,
		prefix:  prefix,
		breaker: cache.NewCircuitBreaker(5, 30*time.Second),
		logger:  logger.Named("redis-cache"),
	}
}

// Get retrieves a value from cache
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if !r.breaker.AllowRequest() {
		return nil, cache.ErrCircuitOpen
	}

	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.breaker.RecordSuccess()
		return nil, outbound.ErrCacheMiss
	}
	if err != nil {
		r.breaker.RecordFailure()
		r.logger.Debug("Cache get failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	r.breaker.RecordSuccess()
	return data, nil
}

// Set stores a value in cache with TTL
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !r.breaker.AllowRequest() {
		return cache.ErrCircuitOpen
	}

	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		r.breaker.RecordFailure()
		r.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return err
	}

	r.breaker.RecordSuccess()
	return nil
}

// Delete removes a value from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	if !r.breaker.AllowRequest() {
		return cache.ErrCircuitOpen
	}

	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.breaker.RecordFailure()
		r.logger.Error("Cache delete failed", zap.String("key", key), zap.Error(err))
		return err
	}

	r.breaker.RecordSuccess()
	return nil
}

// Exists checks if a key exists in cache
func (r *CacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	if !r.breaker.AllowRequest() {
		return false, cache.ErrCircuitOpen
	}

	n, err := r.client.Exists(ctx, r.prefix+key).Result()
	if err != nil {
		r.breaker.RecordFailure()
		r.logger.Error("Cache exists check failed", zap.String("key", key), zap.Error(err))
		return false, err
	}

	r.breaker.RecordSuccess()
	return n > 0, nil
}

// Ping checks the Redis connection
func (r *CacheRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)
