// Package container wires the application together with fx.
package container

import (
	"context"
	"fmt"
	"strings"

	"github.com/alchemorsel/recipebook/internal/application/analytics"
	"github.com/alchemorsel/recipebook/internal/application/events"
	"github.com/alchemorsel/recipebook/internal/application/image"
	"github.com/alchemorsel/recipebook/internal/application/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/shared"
	"github.com/alchemorsel/recipebook/internal/infrastructure/ai/openai"
	"github.com/alchemorsel/recipebook/internal/infrastructure/cache"
	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/alchemorsel/recipebook/internal/infrastructure/hotreload"
	"github.com/alchemorsel/recipebook/internal/infrastructure/http/apiserver"
	"github.com/alchemorsel/recipebook/internal/infrastructure/http/opsserver"
	"github.com/alchemorsel/recipebook/internal/infrastructure/messaging"
	"github.com/alchemorsel/recipebook/internal/infrastructure/monitoring"
	gormrepo "github.com/alchemorsel/recipebook/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/recipebook/internal/infrastructure/persistence/jsonfile"
	"github.com/alchemorsel/recipebook/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/recipebook/internal/infrastructure/persistence/postgres"
	redisrepo "github.com/alchemorsel/recipebook/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/recipebook/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/internal/ports/outbound"
	"github.com/alchemorsel/recipebook/pkg/healthcheck"
	"github.com/alchemorsel/recipebook/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConfigPath is the configuration file to load. Empty means the default
// search paths.
type ConfigPath string

// Module provides all application dependencies
var Module = fx.Options(
	CoreModule,
	HTTPModule,
	LifecycleModule,
)

// CoreModule provides the application services and everything below them,
// without the HTTP servers.
var CoreModule = fx.Options(
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	DatabaseModule,
	CacheModule,
	EventModule,
	RepositoryModule,
	ServiceModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Options(
	fx.Provide(func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	}),
)

// LoggerModule provides logging
var LoggerModule = fx.Options(
	fx.Provide(func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.IsDevelopment(),
		})
	}),
)

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Options(
	fx.Provide(
		func() *monitoring.Metrics {
			return monitoring.NewMetrics(prometheus.NewRegistry())
		},
		func(m *monitoring.Metrics) outbound.Metrics { return m },
		provideTracing,
		func(tp *monitoring.TracingProvider) trace.Tracer { return tp.Tracer() },
	),
)

func provideTracing(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
	tp, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		Endpoint:       cfg.Monitoring.OTLPEndpoint,
		Insecure:       cfg.Monitoring.OTLPInsecure,
		SamplingRate:   cfg.Monitoring.SamplingRate,
		Enabled:        cfg.Monitoring.EnableTracing,
	}, log.Named("tracing"))
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{OnStop: tp.Shutdown})
	return tp, nil
}

// DatabaseModule provides the image store connection
var DatabaseModule = fx.Options(
	fx.Provide(provideDatabase),
)

func provideDatabase(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	level := gormLogLevel(cfg.Database.LogLevel)

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgres.Connect(cfg, level, log.Named("postgres"))
	default:
		db, err = sqlite.SetupDatabase(cfg.Database.Path, level)
	}
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	log.Info("Image store ready", zap.String("driver", cfg.Database.Driver))
	return db, nil
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// CacheResult carries the image cache and, when enabled, the Redis client
// backing it.
type CacheResult struct {
	fx.Out

	Cache outbound.CacheRepository
	Redis redis.UniversalClient
}

// CacheModule provides caching
var CacheModule = fx.Options(
	fx.Provide(provideCache),
)

func provideCache(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (CacheResult, error) {
	if cfg.Cache.Driver != "redis" {
		repo := memory.NewCacheRepository(cfg.Cache.CleanupInterval)
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return repo.Close() }})
		return CacheResult{Cache: repo}, nil
	}

	client, err := cache.NewRedisClient(&cfg.Redis, log)
	if err != nil {
		return CacheResult{}, err
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})

	return CacheResult{
		Cache: redisrepo.NewCacheRepository(client, cfg.Cache.KeyPrefix, log),
		Redis: client,
	}, nil
}

// EventModule provides the message bus and the domain event publisher
var EventModule = fx.Options(
	fx.Provide(
		provideMessageBus,
		func(bus outbound.MessageBus) shared.EventPublisher {
			return events.NewPublisher(bus)
		},
	),
)

func provideMessageBus(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (outbound.MessageBus, error) {
	var bus outbound.MessageBus
	switch cfg.Analytics.Bus {
	case "rabbitmq":
		rmq, err := messaging.NewRabbitMQBus(messaging.RabbitMQConfig{
			URL:            cfg.RabbitMQ.URL,
			Exchange:       cfg.RabbitMQ.Exchange,
			ReconnectDelay: cfg.RabbitMQ.ReconnectDelay,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect message bus: %w", err)
		}
		bus = rmq
	default:
		bus = messaging.NewLocalBus(log)
	}

	lc.Append(fx.Hook{OnStop: func(context.Context) error { return bus.Close() }})
	return bus, nil
}

// RepositoryModule provides the dataset source, the image store and the
// image generator
var RepositoryModule = fx.Options(
	fx.Provide(
		func(cfg *config.Config, log *zap.Logger) outbound.RecipeSource {
			return jsonfile.NewSource(cfg.Catalog.Path, jsonfile.Options{Strict: cfg.Catalog.Strict}, log)
		},
		func(db *gorm.DB, log *zap.Logger) outbound.ImageRepository {
			return gormrepo.NewImageRepository(db, log)
		},
		func(cfg *config.Config, log *zap.Logger) outbound.ImageGenerator {
			return openai.NewClient(openai.Config{
				APIKey:  cfg.AI.APIKey,
				BaseURL: cfg.AI.BaseURL,
				Size:    cfg.AI.Size,
				Timeout: cfg.AI.Timeout,
			}, log)
		},
	),
)

// ServiceModule provides application services
var ServiceModule = fx.Options(
	fx.Provide(
		func(
			source outbound.RecipeSource,
			publisher shared.EventPublisher,
			metrics outbound.Metrics,
			log *zap.Logger,
		) inbound.RecipeService {
			return recipe.NewCatalogService(source, publisher, metrics, log)
		},
		func(
			cfg *config.Config,
			catalog inbound.RecipeService,
			repo outbound.ImageRepository,
			cache outbound.CacheRepository,
			generator outbound.ImageGenerator,
			publisher shared.EventPublisher,
			metrics outbound.Metrics,
			log *zap.Logger,
		) inbound.ImageService {
			return image.NewService(
				image.Config{Delay: cfg.Images.Delay, CacheTTL: cfg.Images.CacheTTL},
				catalog, repo, cache, generator, publisher, metrics, log,
			)
		},
		func(
			cfg *config.Config,
			bus outbound.MessageBus,
			metrics outbound.Metrics,
			log *zap.Logger,
		) inbound.AnalyticsService {
			return analytics.NewService(
				analytics.Config{Enabled: cfg.Analytics.Enabled, TrackingID: cfg.Analytics.TrackingID},
				bus, metrics, log,
			)
		},
	),
)

// HTTPModule provides the API and operations servers
var HTTPModule = fx.Options(
	fx.Provide(
		apiserver.NewServer,
		provideHealthCheck,
		opsserver.NewServer,
	),
)

// HealthParams collects the dependencies probed by the health endpoints
type HealthParams struct {
	fx.In

	Config  *config.Config
	Logger  *zap.Logger
	Catalog inbound.RecipeService
	Images  outbound.ImageRepository
	Bus     outbound.MessageBus
	Redis   redis.UniversalClient
}

func provideHealthCheck(p HealthParams) *healthcheck.HealthCheck {
	health := healthcheck.New(p.Config.App.Version, p.Logger)
	health.Register("catalog", opsserver.NewCatalogChecker(p.Catalog))
	health.Register("image_store", healthcheck.NewPingChecker(p.Images))

	if p.Redis != nil {
		health.RegisterOptional("redis", healthcheck.NewRedisChecker(p.Redis))
	}

	if rmq, ok := p.Bus.(*messaging.RabbitMQBus); ok {
		health.RegisterOptional("rabbitmq", healthcheck.NewCustomChecker("rabbitmq",
			func(ctx context.Context) (healthcheck.Status, string, interface{}) {
				if err := rmq.HealthCheck(ctx); err != nil {
					return healthcheck.StatusUnhealthy, err.Error(), nil
				}
				return healthcheck.StatusHealthy, "", nil
			}))
	}

	return health
}

// LifecycleModule manages application lifecycle
var LifecycleModule = fx.Options(
	fx.Invoke(RegisterLifecycleHooks),
)

// LifecycleParams collects everything started and stopped with the app
type LifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *zap.Logger
	Catalog   inbound.RecipeService
	API       *apiserver.Server
	Ops       *opsserver.Server
}

// RegisterLifecycleHooks loads the catalog, then starts the dataset watcher
// and both servers.
func RegisterLifecycleHooks(p LifecycleParams) {
	log := p.Logger
	var watcher *hotreload.DatasetWatcher

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting recipebook",
				zap.String("version", p.Config.App.Version),
				zap.String("environment", p.Config.App.Environment),
			)

			// The API answers CATALOG_UNAVAILABLE until a load succeeds.
			if _, err := p.Catalog.Load(ctx); err != nil {
				log.Error("Initial catalog load failed", zap.Error(err))
			}

			if p.Config.Catalog.Watch {
				w, err := hotreload.NewDatasetWatcher(p.Config.Catalog.Path, p.Config.Catalog.ReloadDebounce, p.Catalog, log)
				if err != nil {
					log.Warn("Dataset watcher disabled", zap.Error(err))
				} else {
					watcher = w
					watcher.Start()
				}
			}

			if err := p.API.Start(); err != nil {
				return fmt.Errorf("failed to start API server: %w", err)
			}

			if p.Config.Monitoring.EnableMetrics {
				if err := p.Ops.Start(); err != nil {
					return fmt.Errorf("failed to start operations server: %w", err)
				}
			}

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down recipebook")

			if watcher != nil {
				if err := watcher.Stop(); err != nil {
					log.Error("Failed to stop dataset watcher", zap.Error(err))
				}
			}

			if err := p.API.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown API server", zap.Error(err))
			}

			if p.Config.Monitoring.EnableMetrics {
				if err := p.Ops.Shutdown(ctx); err != nil {
					log.Error("Failed to shutdown operations server", zap.Error(err))
				}
			}

			_ = log.Sync()
			return nil
		},
	})
}
