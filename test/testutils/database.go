// Package testutils provides common testing utilities and infrastructure setup
package testutils

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/alchemorsel/recipebook/internal/infrastructure/persistence/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestRedis provides a Redis container with a connected client
type TestRedis struct {
	Container testcontainers.Container
	Client    *redis.Client
	Addr      string
}

// SetupTestRedis starts a Redis container that is removed when the test ends
func SetupTestRedis(t *testing.T) *TestRedis {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor: wait.ForLog("Ready to accept connections").
					WithStartupTimeout(60 * time.Second),
			},
			Started: true,
		})
	require.NoError(t, err, "Failed to start redis container")

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	addr := fmt.Sprintf("%s:%s", host, port.Port())
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(ctx).Err(), "Failed to ping test redis")

	t.Cleanup(func() {
		_ = client.Close()
		_ = container.Terminate(context.Background())
	})

	return &TestRedis{Container: container, Client: client, Addr: addr}
}

// TestPostgres provides a Postgres container and matching configuration
type TestPostgres struct {
	Container testcontainers.Container
	Config    *config.Config
}

// SetupTestPostgres starts a Postgres container that is removed when the test ends
func SetupTestPostgres(t *testing.T) *TestPostgres {
	ctx := context.Background()

	const (
		database = "recipebook_test"
		username = "test_user"
		password = "test_password"
	)

	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "postgres:15-alpine",
				ExposedPorts: []string{"5432/tcp"},
				Env: map[string]string{
					"POSTGRES_DB":       database,
					"POSTGRES_USER":     username,
					"POSTGRES_PASSWORD": password,
				},
				WaitingFor: wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60 * time.Second),
			},
			Started: true,
		})
	require.NoError(t, err, "Failed to start postgres container")

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:          "postgres",
			Host:            host,
			Port:            port.Int(),
			Database:        database,
			Username:        username,
			Password:        password,
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Hour,
			AutoMigrate:     true,
		},
	}

	return &TestPostgres{Container: container, Config: cfg}
}

// SetupTestSQLite opens a migrated SQLite image store in a temp directory
func SetupTestSQLite(t *testing.T) *gorm.DB {
	db, err := sqlite.SetupDatabase(filepath.Join(t.TempDir(), "images.db"), logger.Silent)
	require.NoError(t, err, "Failed to open test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// SetupTestRabbitMQ starts a RabbitMQ broker and returns its AMQP URL
func SetupTestRabbitMQ(t *testing.T) string {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "rabbitmq:3.13-alpine",
				ExposedPorts: []string{"5672/tcp"},
				WaitingFor: wait.ForLog("Server startup complete").
					WithStartupTimeout(90 * time.Second),
			},
			Started: true,
		})
	require.NoError(t, err, "Failed to start rabbitmq container")

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5672")
	require.NoError(t, err)

	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}
