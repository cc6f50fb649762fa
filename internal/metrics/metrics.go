package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	Namespace   string
	ConstLabels prometheus.Labels
	Buckets     []float64
	Registry    *prometheus.Registry
}

type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry registers the collectors on an existing registry instead
// of a private one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// Metrics collects client-side counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	pollAttempts *prometheus.CounterVec
	sourceFetch  *prometheus.CounterVec
	flowEvents   *prometheus.CounterVec
}

func New(opts ...Option) *Metrics {
	cfg := Config{
		Namespace: "ci5dev",
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(cfg.Registry)

	return &Metrics{
		registry: cfg.Registry,

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "http_requests_total",
			Help:        "Outbound HTTP requests by host, method and status code",
			ConstLabels: cfg.ConstLabels,
		}, []string{"host", "method", "code"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "http_request_duration_seconds",
			Help:        "Outbound HTTP request latency",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"host"}),

		pollAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "poll_attempts_total",
			Help:        "Background poll attempts by kind and outcome",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind", "outcome"}),

		sourceFetch: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "source_fetches_total",
			Help:        "Manifest fetches by origin and outcome",
			ConstLabels: cfg.ConstLabels,
		}, []string{"origin", "outcome"}),

		flowEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "flow_events_total",
			Help:        "Auth and verification state transitions",
			ConstLabels: cfg.ConstLabels,
		}, []string{"flow", "event"}),
	}
}

func (m *Metrics) ObserveHTTP(host, method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.httpRequests.WithLabelValues(host, method, label).Inc()
	m.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) PollAttempt(kind, outcome string) {
	if m == nil {
		return
	}
	m.pollAttempts.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) SourceFetch(origin, outcome string) {
	if m == nil {
		return
	}
	m.sourceFetch.WithLabelValues(origin, outcome).Inc()
}

func (m *Metrics) FlowEvent(flow, event string) {
	if m == nil {
		return
	}
	m.flowEvents.WithLabelValues(flow, event).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
