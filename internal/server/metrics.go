package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookback_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lookback_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	pagesServed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lookback_history_pages_served_total",
			Help: "Total number of history pages served",
		},
	)

	entriesServed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lookback_history_entries_served_total",
			Help: "Total number of history entries served across all pages",
		},
	)

	inFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lookback_in_flight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	metricsOnce sync.Once
)

// initMetrics registers the collectors with the default registry. Safe
// to call more than once; only the first call registers.
func initMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			pagesServed,
			entriesServed,
			inFlightRequests,
		)
	})
}

// MetricsHandler returns the Prometheus scrape handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func recordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
