package cache

import (
	"testing"
	"time"

	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisOptions(t *testing.T) {
	opts := RedisOptions(&config.RedisConfig{
		Host:        "cache.internal",
		Port:        6380,
		Database:    2,
		MaxRetries:  3,
		PoolSize:    20,
		ReadTimeout: 3 * time.Second,
	})

	assert.Equal(t, []string{"cache.internal:6380"}, opts.Addrs)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, 4*time.Second, opts.PoolTimeout)
	assert.Equal(t, redisClientName, opts.ClientName)
}

func TestNewRedisClientRejectsNilConfig(t *testing.T) {
	_, err := NewRedisClient(nil, zap.NewNop())
	require.Error(t, err)
}

func TestNewRedisClientUnreachable(t *testing.T) {
	_, err := NewRedisClient(&config.RedisConfig{
		Host:        "127.0.0.1",
		Port:        1,
		DialTimeout: 200 * time.Millisecond,
	}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}
