package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the UMM
// analytics service.
type Metrics struct {
	DatasetLoads        *prometheus.CounterVec // labels: outcome={success,error}
	DatasetLoadDuration prometheus.Histogram
	DatasetMessages     prometheus.Gauge
	DatasetStaleServed  prometheus.Counter

	HTTPRequests       *prometheus.CounterVec   // labels: route, code
	HTTPRequestLatency *prometheus.HistogramVec // labels: route
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "umm_api",
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "umm_api",
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a full dataset file parse.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		DatasetMessages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "umm_api",
			Name:      "dataset_messages",
			Help:      "Number of normalized messages in the current snapshot.",
		}),
		DatasetStaleServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "umm_api",
			Name:      "dataset_stale_served_total",
			Help:      "Reads served from an expired snapshot while a refresh ran.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "umm_api",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		HTTPRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "umm_api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by route.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"route"}),
	}

	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetLoadDuration,
		m.DatasetMessages,
		m.DatasetStaleServed,
		m.HTTPRequests,
		m.HTTPRequestLatency,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetLoads:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "umm_api", Name: "dataset_loads_total"}, []string{"outcome"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "umm_api", Name: "dataset_load_duration_seconds"}),
		DatasetMessages:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "umm_api", Name: "dataset_messages"}),
		DatasetStaleServed:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "umm_api", Name: "dataset_stale_served_total"}),
		HTTPRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "umm_api", Name: "http_requests_total"}, []string{"route", "code"}),
		HTTPRequestLatency:  prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "umm_api", Name: "http_request_duration_seconds"}, []string{"route"}),
	}
}
