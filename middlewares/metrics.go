package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sciocoder/FastEndpoints/internal"
)

// Metrics records request counts and latencies per route template, so
// /orders/123 and /orders/456 share one series. Expose the scrape
// endpoint with WithHandler:
//
//	metrics := middlewares.NewMetrics()
//	fastendpoints.New(
//	    fastendpoints.WithMiddleware(metrics.Middleware()),
//	    fastendpoints.WithHandler("/metrics", metrics.Handler()),
//	)
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

// MetricsOption configures Metrics.
type MetricsOption func(*metricsConfig)

type metricsConfig struct {
	namespace string
	buckets   []float64
}

// WithMetricsNamespace prefixes every metric name.
func WithMetricsNamespace(ns string) MetricsOption {
	return func(cfg *metricsConfig) {
		cfg.namespace = ns
	}
}

// WithMetricsBuckets overrides the latency histogram buckets, in
// seconds.
func WithMetricsBuckets(buckets []float64) MetricsOption {
	return func(cfg *metricsConfig) {
		if len(buckets) > 0 {
			cfg.buckets = buckets
		}
	}
}

// NewMetrics creates a Metrics collector on its own registry, keeping
// the scrape output free of whatever the default registry accumulates.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := &metricsConfig{
		buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "http_requests_total",
			Help:      "Requests served, by method, route template, and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Request latency, by method and route template.",
			Buckets:   cfg.buckets,
		}, []string{"method", "route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being handled.",
		}),
	}
	m.registry.MustRegister(m.requests, m.duration, m.inflight)
	return m
}

// Middleware returns the recording middleware.
func (m *Metrics) Middleware() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			m.inflight.Inc()
			defer m.inflight.Dec()

			err := next(c)

			route := c.Request().URL.Path
			if ep := c.Endpoint(); ep != nil {
				route = ep.Route()
			}
			method := c.Request().Method

			status := http.StatusOK
			if rw, ok := c.Response().(*internal.ResponseWriter); ok && rw.Written() {
				status = rw.Status()
			} else if err != nil {
				status = http.StatusInternalServerError
			}

			m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
