package opsserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/alchemorsel/recipebook/internal/ports/inbound"
	"github.com/alchemorsel/recipebook/pkg/healthcheck"
	"github.com/alchemorsel/recipebook/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOpsServer(t *testing.T, stats inbound.CatalogStats) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Monitoring: config.MonitoringConfig{
			MetricsPort:     9090,
			HealthCheckPath: "/health",
			ReadinessPath:   "/ready",
			LivenessPath:    "/live",
		},
	}

	catalog := new(testutils.MockRecipeService)
	catalog.On("Stats").Return(stats)

	health := healthcheck.New("test", zap.NewNop())
	health.SetCacheTTL(0)
	health.Register("catalog", NewCatalogChecker(catalog))

	return NewServer(cfg, zap.NewNop(), testutils.NewTestMetrics(), health).Handler()
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestOpsServerCatalogLoaded(t *testing.T) {
	h := newOpsServer(t, inbound.CatalogStats{Loaded: true, RecipeCount: 4, LoadedAt: time.Now()})

	rec := get(h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	assert.Equal(t, http.StatusOK, get(h, "/ready").Code)
	assert.Equal(t, http.StatusOK, get(h, "/live").Code)
}

func TestOpsServerCatalogNotLoaded(t *testing.T) {
	h := newOpsServer(t, inbound.CatalogStats{})

	rec := get(h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "recipe catalog not loaded")

	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/ready").Code)
	assert.Equal(t, http.StatusOK, get(h, "/live").Code)
}

func TestOpsServerCatalogEmptyIsDegraded(t *testing.T) {
	h := newOpsServer(t, inbound.CatalogStats{Loaded: true})

	rec := get(h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestOpsServerMetrics(t *testing.T) {
	h := newOpsServer(t, inbound.CatalogStats{Loaded: true, RecipeCount: 1})

	rec := get(h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
