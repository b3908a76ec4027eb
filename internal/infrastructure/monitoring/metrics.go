// Package monitoring provides Prometheus metrics and OpenTelemetry tracing.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recipebook"

// Metrics handles Prometheus metrics collection
type Metrics struct {
	gatherer prometheus.Gatherer

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	// Business metrics
	filterRequestsTotal prometheus.Counter
	filterResultSize    prometheus.Histogram
	filterDuration      prometheus.Histogram
	catalogSize         prometheus.Gauge
	catalogReloads      *prometheus.CounterVec
	imagesGenerated     *prometheus.CounterVec
	imageDuration       *prometheus.HistogramVec
	analyticsMessages   *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. reg must also implement
// prometheus.Gatherer to serve the /metrics endpoint.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		gatherer: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status_code"},
		),
		httpInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests being served",
			},
		),

		filterRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "filter_requests_total",
				Help:      "Total number of recipe filter requests",
			},
		),
		filterResultSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "filter_result_size",
				Help:      "Number of recipes matched by a filter request",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		filterDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "filter_duration_seconds",
				Help:      "Time spent filtering the catalog",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
		),
		catalogSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_recipes",
				Help:      "Number of recipes in the active catalog snapshot",
			},
		),
		catalogReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_reloads_total",
				Help:      "Catalog loads by outcome",
			},
			[]string{"status"},
		),
		imagesGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "images_generated_total",
				Help:      "Generated recipe images by source",
			},
			[]string{"source"},
		),
		imageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "image_generation_duration_seconds",
				Help:      "Time spent generating and storing a recipe image",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		analyticsMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analytics_messages_total",
				Help:      "Analytics messages by kind and outcome",
			},
			[]string{"kind", "status"},
		),
	}
}

// Handler serves the registered metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a served HTTP request
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(method, route, code).Inc()
	m.httpRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
}

// InFlight returns the in-flight request gauge
func (m *Metrics) InFlight() prometheus.Gauge {
	return m.httpInFlight
}

// ObserveFilterRequest records a filter request and its result size
func (m *Metrics) ObserveFilterRequest(resultCount int, duration time.Duration) {
	m.filterRequestsTotal.Inc()
	m.filterResultSize.Observe(float64(resultCount))
	m.filterDuration.Observe(duration.Seconds())
}

// SetCatalogSize sets the catalog size gauge
func (m *Metrics) SetCatalogSize(count int) {
	m.catalogSize.Set(float64(count))
}

// RecordCatalogReload counts a catalog load
func (m *Metrics) RecordCatalogReload(success bool) {
	m.catalogReloads.WithLabelValues(status(success)).Inc()
}

// RecordImageGenerated counts a generated image
func (m *Metrics) RecordImageGenerated(source string, duration time.Duration) {
	m.imagesGenerated.WithLabelValues(source).Inc()
	m.imageDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordAnalyticsMessage counts an analytics message
func (m *Metrics) RecordAnalyticsMessage(kind string, dropped bool) {
	s := "published"
	if dropped {
		s = "dropped"
	}
	m.analyticsMessages.WithLabelValues(kind, s).Inc()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
