// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/alchemorsel/recipebook/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/recipebook/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/recipebook/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	apperrors "github.com/alchemorsel/recipebook/pkg/errors"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Server represents the JSON API HTTP server
type Server struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new API server instance
func NewServer(
	cfg *config.Config,
	log *zap.Logger,
	metrics *monitoring.Metrics,
	tracer trace.Tracer,
	recipeService inbound.RecipeService,
	imageService inbound.ImageService,
	analyticsService inbound.AnalyticsService,
) *Server {
	s := &Server{
		config: cfg,
		logger: log.Named("api-server"),
	}

	mw := middleware.New(cfg, log, metrics, tracer)
	h := handlers.NewAPIHandlers(recipeService, imageService, analyticsService, log).
		WithTimeouts(cfg.Server.RequestTimeout, cfg.Server.GenerationTimeout)

	s.router = s.setupRoutes(mw, h)
	s.server = &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return s
}

// setupRoutes configures the middleware chain and API routes
func (s *Server) setupRoutes(mw *middleware.Middleware, h *handlers.APIHandlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(mw.Tracing)
	r.Use(mw.Metrics)
	r.Use(mw.Security)
	r.Use(mw.CORS())
	r.Use(mw.RateLimit)
	if s.config.Server.EnableCompression {
		r.Use(middleware.Compression(middleware.DefaultCompressionConfig()))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, apperrors.NewNotFoundError("Route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, r, apperrors.NewMethodNotAllowedError(r.Method))
	})

	r.Get("/api/v1/openapi.yaml", serveOpenAPISpec)
	r.Route("/api/v1", h.Routes)

	return r
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listener and serves in the background. Bind errors are
// returned synchronously.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	s.logger.Info("Starting API server", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server stopped unexpectedly", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the API server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")

	if timeout := s.config.Server.ShutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.server.Shutdown(ctx)
}

