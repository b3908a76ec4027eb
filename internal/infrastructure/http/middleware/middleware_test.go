package middleware

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alchemorsel/recipebook/internal/infrastructure/config"
	"github.com/alchemorsel/recipebook/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipebook/pkg/errors"
	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Environment: "test"},
		Server:    config.ServerConfig{EnableCORS: true, AllowedOrigins: []string{"https://recipes.example"}},
		RateLimit: config.RateLimitConfig{Enable: true, RequestsPerMin: 60, BurstSize: 2},
	}
}

func newTestMiddleware(cfg *config.Config) (*Middleware, *monitoring.Metrics) {
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	return New(cfg, zap.NewNop(), metrics, noop.NewTracerProvider().Tracer("test")), metrics
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"success":true}`))
})

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	m, _ := newTestMiddleware(testConfig())

	var seen string
	h := m.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestRecoveryWritesErrorEnvelope(t *testing.T) {
	m, _ := newTestMiddleware(testConfig())
	h := m.RequestID(m.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errors.CodeInternal, body.Error.Code)
	assert.Equal(t, rec.Header().Get(RequestIDHeader), body.Error.RequestID)
}

func TestRateLimitRejectsAfterBurst(t *testing.T) {
	m, _ := newTestMiddleware(testConfig())
	h := m.RateLimit(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enable = false
	m, _ := newTestMiddleware(cfg)
	h := m.RateLimit(okHandler)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	m, _ := newTestMiddleware(testConfig())
	rec := httptest.NewRecorder()
	m.Security(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	m, _ := newTestMiddleware(testConfig())
	h := m.CORS()(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/recipes", nil)
	req.Header.Set("Origin", "https://recipes.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://recipes.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsRecordsRoutePattern(t *testing.T) {
	m, metrics := newTestMiddleware(testConfig())

	r := chi.NewRouter()
	r.Use(m.Metrics)
	r.Get("/recipes/{id}", okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/recipes/7", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `route="/recipes/{id}"`)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.InFlight()))
}

func TestCompressionNegotiation(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"gzip", "gzip"},
		{"gzip, deflate, br", "br"},
		{"br;q=0, gzip", "gzip"},
		{"identity", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, negotiateEncoding(tt.header), tt.header)
	}
}

func TestCompressionEncodesLargeJSON(t *testing.T) {
	payload := `{"data":"` + strings.Repeat("moussaka ", 400) + `"}`
	h := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(payload))
	}))

	for _, enc := range []string{"br", "gzip"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Encoding", enc)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, enc, rec.Header().Get("Content-Encoding"))

		var reader io.Reader
		if enc == "br" {
			reader = brotli.NewReader(bytes.NewReader(rec.Body.Bytes()))
		} else {
			gz, err := gzip.NewReader(bytes.NewReader(rec.Body.Bytes()))
			require.NoError(t, err)
			reader = gz
		}
		decoded, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, payload, string(decoded))
	}
}

func TestCompressionSkipsSmallBodies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "br")
	rec := httptest.NewRecorder()
	Compression(DefaultCompressionConfig())(okHandler).ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}
