// Package metrics provides Prometheus collectors for the HTTP boundary and
// the search engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the Prometheus collectors for the server. All operations
// are thread-safe.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SearchQueries   prometheus.Counter
	SearchResults   prometheus.Histogram
}

// New creates the collectors. They are not registered; call Register.
func New() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "homeinv_http_requests_total",
				Help: "Total HTTP requests by method and status code",
			},
			[]string{"method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "homeinv_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds by method",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"method"},
		),
		SearchQueries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "homeinv_search_queries_total",
				Help: "Total search queries served",
			},
		),
		SearchResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "homeinv_search_results",
				Help:    "Result counts per search query",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
			},
		),
	}
}

// Register registers all collectors with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.RequestsTotal,
		m.RequestDuration,
		m.SearchQueries,
		m.SearchResults,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
