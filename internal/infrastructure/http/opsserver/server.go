// Package opsserver serves health, readiness, liveness and Prometheus
// metrics on a port separate from the API
package opsserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/alchemorsel/recipebook/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/pkg/healthcheck"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server is the operations HTTP server
type Server struct {
	config *config.Config
	logger *zap.Logger
	engine *gin.Engine
	server *http.Server
}

// NewServer creates the operations server
func NewServer(cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics, health *healthcheck.HealthCheck) *Server {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET(cfg.Monitoring.HealthCheckPath, health.Handler())
	engine.GET(cfg.Monitoring.LivenessPath, health.LivenessHandler())
	engine.GET(cfg.Monitoring.ReadinessPath, health.ReadinessHandler())
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	return &Server{
		config: cfg,
		logger: logger.Named("ops-server"),
		engine: engine,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Monitoring.MetricsPort),
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the gin engine
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the listener and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	s.logger.Info("Starting operations server", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Operations server stopped unexpectedly", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the operations server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down operations server")
	return s.server.Shutdown(ctx)
}

// NewCatalogChecker reports unhealthy until a snapshot is loaded and
// degraded while the loaded catalog is empty
func NewCatalogChecker(catalog inbound.RecipeService) healthcheck.Checker {
	return healthcheck.NewCustomChecker("catalog", func(ctx context.Context) (healthcheck.Status, string, interface{}) {
		stats := catalog.Stats()
		switch {
		case !stats.Loaded:
			return healthcheck.StatusUnhealthy, "recipe catalog not loaded", stats
		case stats.RecipeCount == 0:
			return healthcheck.StatusDegraded, "recipe catalog is empty", stats
		default:
			return healthcheck.StatusHealthy, "", stats
		}
	})
}
