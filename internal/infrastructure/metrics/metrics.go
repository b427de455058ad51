// Package metrics exposes gateway-specific Prometheus collectors: backend
// calls, proxied requests, guard decisions and cache lookups.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics owns a private registry so tests can create independent instances.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	proxyRequests   *prometheus.CounterVec
	guardDecisions  *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		backendRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "backend",
				Name:      "requests_total",
				Help:      "Backend API calls by method and status code.",
			},
			[]string{"method", "status"},
		),
		backendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "backend",
				Name:      "request_duration_seconds",
				Help:      "Backend API call latency.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"method"},
		),
		proxyRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "proxy",
				Name:      "requests_total",
				Help:      "Requests forwarded through the /api proxy.",
			},
			[]string{"method", "status"},
		),
		guardDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "guard",
				Name:      "decisions_total",
				Help:      "Admin guard outcomes.",
			},
			[]string{"outcome"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Response cache lookups by cache name and result.",
			},
			[]string{"cache", "result"},
		),
	}

	m.Registry.MustRegister(
		m.backendRequests,
		m.backendDuration,
		m.proxyRequests,
		m.guardDecisions,
		m.cacheLookups,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveBackend records one backend call. status 0 means a transport error.
func (m *Metrics) ObserveBackend(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.backendRequests.WithLabelValues(method, statusLabel(status)).Inc()
	m.backendDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveProxy records one proxied request.
func (m *Metrics) ObserveProxy(method string, status int) {
	if m == nil {
		return
	}
	m.proxyRequests.WithLabelValues(method, statusLabel(status)).Inc()
}

// GuardDecision records a guard outcome such as "allowed" or "forbidden".
func (m *Metrics) GuardDecision(outcome string) {
	if m == nil {
		return
	}
	m.guardDecisions.WithLabelValues(outcome).Inc()
}

// CacheLookup records a hit or miss for the named cache.
func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
