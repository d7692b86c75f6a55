package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes dashboard fetch and HTTP metrics through its own registry.
type Collector struct {
	registry        *prometheus.Registry
	fetchTotal      *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	sessions        prometheus.Gauge
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector registers every dashboard metric.
func NewCollector() (*Collector, error) {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "preburn",
			Subsystem: "dashboard",
			Name:      "fetches_total",
			Help:      "Resolved upstream fetches by resource and outcome.",
		}, []string{"resource", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "preburn",
			Subsystem: "dashboard",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of upstream fetches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "preburn",
			Subsystem: "dashboard",
			Name:      "sessions",
			Help:      "Resident dashboard sessions.",
		}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "preburn",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "preburn",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for inbound HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	for _, collector := range []prometheus.Collector{c.fetchTotal, c.fetchDuration, c.sessions, c.requestTotal, c.requestDuration} {
		if err := c.registry.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveFetch records one resolved fetch. Zero latency skips the histogram.
func (c *Collector) ObserveFetch(resource, outcome string, latency time.Duration) {
	c.fetchTotal.WithLabelValues(resource, outcome).Inc()
	if latency > 0 {
		c.fetchDuration.WithLabelValues(resource).Observe(latency.Seconds())
	}
}

// SetSessions reports the number of resident sessions.
func (c *Collector) SetSessions(n int) {
	c.sessions.Set(float64(n))
}

// ObserveRequest records one inbound HTTP request.
func (c *Collector) ObserveRequest(method, route, status string, latency time.Duration) {
	c.requestTotal.WithLabelValues(method, route, status).Inc()
	c.requestDuration.WithLabelValues(method, route, status).Observe(latency.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
