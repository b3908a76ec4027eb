package healthcheck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubChecker struct {
	status Status
	msg    string
	delay  time.Duration
	calls  atomic.Int32
}

func (s *stubChecker) Check(ctx context.Context) Check {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return Check{Status: StatusUnhealthy, Message: ctx.Err().Error()}
		}
	}
	return Check{Status: s.status, Message: s.msg}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthCheck_Check_NoCheckers(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())

	response := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, response.Status)
	assert.Equal(t, "1.0.0", response.Version)
	assert.Empty(t, response.Checks)
}

func TestHealthCheck_Check_AggregatesStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[string]Status
		want     Status
	}{
		{"all healthy", map[string]Status{"catalog": StatusHealthy, "database": StatusHealthy}, StatusHealthy},
		{"one degraded", map[string]Status{"catalog": StatusDegraded, "database": StatusHealthy}, StatusDegraded},
		{"unhealthy wins", map[string]Status{"catalog": StatusDegraded, "database": StatusUnhealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := New("1.0.0", zap.NewNop())
			for name, status := range tt.statuses {
				hc.Register(name, &stubChecker{status: status})
			}

			response := hc.Check(context.Background())
			assert.Equal(t, tt.want, response.Status)
			require.Len(t, response.Checks, len(tt.statuses))
			assert.Equal(t, "catalog", response.Checks[0].Name)
			assert.Equal(t, "database", response.Checks[1].Name)
		})
	}
}

func TestHealthCheck_Check_OptionalFailureDegrades(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.Register("image_store", &stubChecker{status: StatusHealthy})
	hc.RegisterOptional("redis", &stubChecker{status: StatusUnhealthy, msg: "connection refused"})

	response := hc.Check(context.Background())

	assert.Equal(t, StatusDegraded, response.Status)
	require.Len(t, response.Checks, 2)
	assert.True(t, response.Checks[0].Critical)
	assert.False(t, response.Checks[1].Critical)
	assert.Equal(t, StatusUnhealthy, response.Checks[1].Status)
}

func TestHealthCheck_Check_Timeout(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.SetCheckTimeout(50 * time.Millisecond)
	hc.Register("slow", &stubChecker{status: StatusHealthy, delay: time.Second})

	start := time.Now()
	response := hc.Check(context.Background())

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, StatusUnhealthy, response.Status)
	require.Len(t, response.Checks, 1)
	assert.Equal(t, "slow", response.Checks[0].Name)
}

func TestHealthCheck_Check_ConcurrentExecution(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	for _, name := range []string{"a", "b", "c"} {
		hc.Register(name, &stubChecker{status: StatusHealthy, delay: 100 * time.Millisecond})
	}

	start := time.Now()
	response := hc.Check(context.Background())

	assert.Equal(t, StatusHealthy, response.Status)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestHealthCheck_Check_Caching(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	checker := &stubChecker{status: StatusHealthy}
	hc.Register("db", checker)

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, int32(1), checker.calls.Load())

	hc.SetCacheTTL(0)
	hc.Check(context.Background())
	assert.Equal(t, int32(2), checker.calls.Load())
}

func TestPingChecker(t *testing.T) {
	healthy := NewPingChecker(stubPinger{}).Check(context.Background())
	assert.Equal(t, StatusHealthy, healthy.Status)

	failing := NewPingChecker(stubPinger{err: errors.New("connection refused")}).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, failing.Status)
	assert.Equal(t, "connection refused", failing.Message)
}

func TestCustomChecker(t *testing.T) {
	checker := NewCustomChecker("catalog", func(context.Context) (Status, string, interface{}) {
		return StatusDegraded, "catalog is empty", map[string]int{"recipes": 0}
	})

	check := checker.Check(context.Background())
	assert.Equal(t, "catalog", check.Name)
	assert.Equal(t, StatusDegraded, check.Status)
	assert.Equal(t, "catalog is empty", check.Message)
}

func serve(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/", handler)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestHealthCheck_Handler(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.Register("catalog", &stubChecker{status: StatusDegraded})

	rec := serve(hc.Handler())
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Contains(t, body, "total_duration_ms")
}

func TestHealthCheck_Handler_Unhealthy(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.Register("database", &stubChecker{status: StatusUnhealthy, msg: "down"})

	rec := serve(hc.Handler())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthCheck_LivenessHandler(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	hc.Register("database", &stubChecker{status: StatusUnhealthy})

	rec := serve(hc.LivenessHandler())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"alive"`)
}

func TestHealthCheck_ReadinessHandler(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	catalog := &stubChecker{status: StatusDegraded}
	hc.Register("catalog", catalog)
	hc.SetCacheTTL(0)

	rec := serve(hc.ReadinessHandler())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)

	catalog.status = StatusUnhealthy
	rec = serve(hc.ReadinessHandler())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"not_ready"`)
	assert.Contains(t, rec.Body.String(), `"name":"catalog"`)
}

func TestCheck_MarshalJSON(t *testing.T) {
	check := Check{Name: "db", Status: StatusHealthy, Duration: 1500 * time.Millisecond}

	data, err := json.Marshal(check)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(1500), decoded["duration_ms"])
}

func BenchmarkHealthCheck_Check_WithCaching(b *testing.B) {
	hc := New("1.0.0", zap.NewNop())
	hc.Register("db", &stubChecker{status: StatusHealthy})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hc.Check(ctx)
	}
}
