// Package metrics exposes Prometheus instruments for ingestion runs and the HTTP API.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"premise_fetcher/internal/domain"
)

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// Metrics holds the service collectors.
//
// Metrics:
//   - premise_ingest_runs_total{platform,status}
//   - premise_ingest_duration_seconds{platform}
//   - premise_ingest_items_total{platform,outcome}
//   - premise_http_requests_total{method,route,code}
//   - premise_http_request_duration_seconds{method,route}
type Metrics struct {
	IngestRuns     *prometheus.CounterVec
	IngestDuration *prometheus.HistogramVec
	IngestItems    *prometheus.CounterVec

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// Default registers the collectors on the global registry once.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IngestRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "premise_ingest_runs_total",
				Help: "Total number of ingestion runs by outcome",
			},
			[]string{"platform", "status"},
		),
		IngestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "premise_ingest_duration_seconds",
				Help:    "Duration of ingestion runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
			[]string{"platform"},
		),
		IngestItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "premise_ingest_items_total",
				Help: "Total number of fetched items by outcome",
			},
			[]string{"platform", "outcome"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "premise_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "premise_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveIngest records one ingestion run. Safe on a nil receiver.
func (m *Metrics) ObserveIngest(platform domain.Platform, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.IngestRuns.WithLabelValues(string(platform), status).Inc()
	m.IngestDuration.WithLabelValues(string(platform)).Observe(d.Seconds())
}

// AddItems counts n items with the given outcome.
func (m *Metrics) AddItems(platform domain.Platform, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.IngestItems.WithLabelValues(string(platform), outcome).Add(float64(n))
}

func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
