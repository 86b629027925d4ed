package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/fsroute/pkg/dispatch"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "fsroute").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "fsroute",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the route table metrics.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	missesTotal     prometheus.Counter
	rebuildsTotal   *prometheus.CounterVec
	routes          prometheus.Gauge
}

type metricsKey struct {
	registry  prometheus.Registerer
	namespace string
	subsystem string
}

// Collectors can be registered once per registry, so metrics are shared
// by every middleware created against the same registry and names.
var (
	metricsMu    sync.Mutex
	metricsCache = make(map[metricsKey]*Metrics)
)

// NewMetrics registers the route metrics with the configured registry, or
// returns the ones already registered there.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	key := metricsKey{config.Registry, config.Namespace, config.Subsystem}

	metricsMu.Lock()
	defer metricsMu.Unlock()
	if m, ok := metricsCache[key]; ok {
		return m
	}
	m := initMetrics(config)
	metricsCache[key] = m
	return m
}

func initMetrics(config MetricsConfig) *Metrics {
	factory := promauto.With(config.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of requests by matched route and status code",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Request duration in seconds by matched route",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		missesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_misses_total",
			Help:        "Total number of valid request paths no route matched",
			ConstLabels: config.ConstLabels,
		}),

		rebuildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "table_rebuilds_total",
			Help:        "Total number of route table rebuilds by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		routes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes",
			Help:        "Number of routes in the live table",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates middleware that records request metrics labeled by
// the route the dispatcher matched.
//
// Metrics collected:
//   - fsroute_requests_total: Counter of requests by route and status
//   - fsroute_request_duration_seconds: Histogram of request duration by route
//   - fsroute_route_misses_total: Counter of valid paths no route matched
//
// Unmatched requests use the route label "unmatched" and invalid paths
// (answered 400) use "rejected", which keeps label cardinality bounded by
// the size of the table. Rejected paths are not counted as misses.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Use(middleware.Prometheus(middleware.WithNamespace("myapp")))
//	r.Handle("/metrics", promhttp.Handler())
//	r.Handle("/*", dispatcher)
func Prometheus(opts ...MetricsOption) func(http.Handler) http.Handler {
	return NewMetrics(opts...).Middleware
}

// Middleware wraps next with request metrics.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, info := dispatch.WithRouteInfo(r.Context())
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))
		duration := time.Since(start).Seconds()

		route := info.Label()
		if info.Missed() {
			m.missesTotal.Inc()
		}
		m.requestDuration.WithLabelValues(route).Observe(duration)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(statusOf(ww))).Inc()
	})
}

// RecordRebuild records a table rebuild. routes is the size of the table
// now serving; it is ignored when err is non-nil.
func (m *Metrics) RecordRebuild(routes int, err error) {
	if err != nil {
		m.rebuildsTotal.WithLabelValues("error").Inc()
		return
	}
	m.rebuildsTotal.WithLabelValues("ok").Inc()
	m.routes.Set(float64(routes))
}

// statusOf returns the written status; a handler that never called
// WriteHeader answered 200.
func statusOf(ww chimw.WrapResponseWriter) int {
	if status := ww.Status(); status != 0 {
		return status
	}
	return http.StatusOK
}
