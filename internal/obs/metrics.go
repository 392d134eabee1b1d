// Package obs holds the Prometheus instrumentation of the service.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

// Metrics owns a private registry so several instances (tests) never collide
// on the default one.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	metricsIngested *prometheus.CounterVec
	loginAttempts   *prometheus.CounterVec
}

// NewMetrics registers the HTTP and domain collectors plus the Go runtime ones.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		metricsIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dq_metric_records_ingested_total",
				Help: "Metric records committed by ingestion, by dimension.",
			},
			[]string{"dimension"},
		),
		loginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dq_login_attempts_total",
				Help: "Login attempts by outcome.",
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.metricsIngested,
		m.loginAttempts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records RPS, latency and in-flight requests per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.httpInFlight.Inc()
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		m.httpRequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
		m.httpInFlight.Dec()
	}
}

// ObserveIngest counts committed records of one dimension.
func (m *Metrics) ObserveIngest(dimension string, records int) {
	if m == nil || records <= 0 {
		return
	}
	m.metricsIngested.WithLabelValues(dimension).Add(float64(records))
}

// ObserveLogin counts a login attempt; outcome is a short fixed label.
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}
