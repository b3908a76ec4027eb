// Package healthcheck aggregates dependency probes into the health, liveness
// and readiness documents served by the operations server.
package healthcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// Check is the outcome of one probe
type Check struct {
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	Critical    bool          `json:"critical"`
	Message     string        `json:"message,omitempty"`
	LastChecked time.Time     `json:"last_checked"`
	Duration    time.Duration `json:"-"`
	Metadata    interface{}   `json:"metadata,omitempty"`
}

// Response is the aggregate health document
type Response struct {
	Status        Status        `json:"status"`
	Version       string        `json:"version"`
	Timestamp     time.Time     `json:"timestamp"`
	Checks        []Check       `json:"checks"`
	TotalDuration time.Duration `json:"-"`
}

// Checker probes one dependency
type Checker interface {
	Check(ctx context.Context) Check
}

type registration struct {
	checker  Checker
	critical bool
}

// HealthCheck runs the registered checkers. A failing critical checker makes
// the service unhealthy; a failing optional one only degrades it.
type HealthCheck struct {
	version      string
	logger       *zap.Logger
	checkTimeout time.Duration

	mu       sync.RWMutex
	checkers map[string]registration
	cache    *Response
	cacheTTL time.Duration
}

// New creates a new health check instance
func New(version string, logger *zap.Logger) *HealthCheck {
	return &HealthCheck{
		version:      version,
		logger:       logger.Named("healthcheck"),
		checkTimeout: 5 * time.Second,
		checkers:     make(map[string]registration),
		cacheTTL:     5 * time.Second,
	}
}

// Register adds a critical checker
func (h *HealthCheck) Register(name string, checker Checker) {
	h.register(name, registration{checker: checker, critical: true})
}

// RegisterOptional adds a checker whose failure degrades the service
// without making it unhealthy
func (h *HealthCheck) RegisterOptional(name string, checker Checker) {
	h.register(name, registration{checker: checker})
}

func (h *HealthCheck) register(name string, reg registration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = reg
	h.cache = nil
}

// SetCacheTTL sets how long an aggregate response is reused. Zero disables
// caching.
func (h *HealthCheck) SetCacheTTL(ttl time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cacheTTL = ttl
	h.cache = nil
}

// SetCheckTimeout bounds each individual checker
func (h *HealthCheck) SetCheckTimeout(timeout time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkTimeout = timeout
}

// Handler serves the aggregate document, 503 when unhealthy
func (h *HealthCheck) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response := h.Check(c.Request.Context())

		statusCode := http.StatusOK
		if response.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, response)
	}
}

// LivenessHandler answers as long as the process can serve requests
func (h *HealthCheck) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"timestamp": time.Now(),
		})
	}
}

// ReadinessHandler reports ready unless the aggregate status is unhealthy
func (h *HealthCheck) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response := h.Check(c.Request.Context())

		if response.Status != StatusUnhealthy {
			c.JSON(http.StatusOK, gin.H{
				"status":    "ready",
				"timestamp": response.Timestamp,
			})
			return
		}

		failing := make([]Check, 0, len(response.Checks))
		for _, check := range response.Checks {
			if check.Critical && check.Status == StatusUnhealthy {
				failing = append(failing, check)
			}
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"checks": failing,
		})
	}
}

// Check runs all checkers concurrently and returns them sorted by name
func (h *HealthCheck) Check(ctx context.Context) Response {
	h.mu.RLock()
	if h.cache != nil && time.Since(h.cache.Timestamp) < h.cacheTTL {
		cached := *h.cache
		h.mu.RUnlock()
		return cached
	}

	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	regs := make([]registration, len(names))
	for i, name := range names {
		regs[i] = h.checkers[name]
	}
	timeout := h.checkTimeout
	h.mu.RUnlock()

	start := time.Now()
	checks := make([]Check, len(names))

	var wg sync.WaitGroup
	for i := range names {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			checks[i] = runCheck(ctx, names[i], regs[i], timeout)
		}(i)
	}
	wg.Wait()

	response := Response{
		Status:        StatusHealthy,
		Version:       h.version,
		Timestamp:     start,
		Checks:        checks,
		TotalDuration: time.Since(start),
	}
	for _, check := range checks {
		response.Status = worst(response.Status, effective(check))
		if check.Status != StatusHealthy {
			h.logger.Warn("Health check not healthy",
				zap.String("check", check.Name),
				zap.String("status", string(check.Status)),
				zap.Bool("critical", check.Critical),
				zap.String("message", check.Message),
			)
		}
	}

	h.mu.Lock()
	h.cache = &response
	h.mu.Unlock()

	return response
}

func runCheck(ctx context.Context, name string, reg registration, timeout time.Duration) Check {
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	done := make(chan Check, 1)
	go func() { done <- reg.checker.Check(checkCtx) }()

	var check Check
	select {
	case check = <-done:
	case <-checkCtx.Done():
		check = Check{Status: StatusUnhealthy, Message: fmt.Sprintf("timed out after %s", timeout)}
	}

	check.Name = name
	check.Critical = reg.critical
	if check.LastChecked.IsZero() {
		check.LastChecked = start
	}
	if check.Duration == 0 {
		check.Duration = time.Since(start)
	}
	return check
}

// effective downgrades the failure of an optional check to degraded
func effective(c Check) Status {
	if c.Status == StatusUnhealthy && !c.Critical {
		return StatusDegraded
	}
	return c.Status
}

func worst(a, b Status) Status {
	rank := map[Status]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

// Pinger is anything that can verify its connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker reports unhealthy when Ping fails
type PingChecker struct {
	pinger Pinger
}

// NewPingChecker creates a checker over a Pinger such as the image store
func NewPingChecker(pinger Pinger) *PingChecker {
	return &PingChecker{pinger: pinger}
}

// Check pings the dependency
func (p *PingChecker) Check(ctx context.Context) Check {
	start := time.Now()
	err := p.pinger.Ping(ctx)

	check := Check{Status: StatusHealthy, LastChecked: start, Duration: time.Since(start)}
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}
	return check
}

// RedisChecker pings Redis and reports connection pool statistics
type RedisChecker struct {
	client redis.UniversalClient
}

// NewRedisChecker creates a new Redis checker
func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client}
}

// Check performs the Redis ping
func (r *RedisChecker) Check(ctx context.Context) Check {
	start := time.Now()
	err := r.client.Ping(ctx).Err()

	check := Check{Status: StatusHealthy, LastChecked: start, Duration: time.Since(start)}
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
		return check
	}

	stats := r.client.PoolStats()
	check.Metadata = map[string]uint32{
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"timeouts":    stats.Timeouts,
	}
	return check
}

// CustomChecker adapts a function to Checker
type CustomChecker struct {
	name  string
	check func(ctx context.Context) (Status, string, interface{})
}

// NewCustomChecker creates a new custom checker
func NewCustomChecker(name string, check func(ctx context.Context) (Status, string, interface{})) *CustomChecker {
	return &CustomChecker{name: name, check: check}
}

// Check calls the wrapped function
func (c *CustomChecker) Check(ctx context.Context) Check {
	start := time.Now()
	status, message, metadata := c.check(ctx)

	return Check{
		Name:        c.name,
		Status:      status,
		Message:     message,
		Metadata:    metadata,
		LastChecked: start,
		Duration:    time.Since(start),
	}
}

// MarshalJSON reports the duration in milliseconds
func (c Check) MarshalJSON() ([]byte, error) {
	type plain Check
	return json.Marshal(struct {
		plain
		DurationMS int64 `json:"duration_ms"`
	}{plain(c), c.Duration.Milliseconds()})
}

// MarshalJSON reports the total duration in milliseconds
func (r Response) MarshalJSON() ([]byte, error) {
	type plain Response
	return json.Marshal(struct {
		plain
		TotalDurationMS int64 `json:"total_duration_ms"`
	}{plain(r), r.TotalDuration.Milliseconds()})
}
