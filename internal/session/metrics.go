package session

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectAttemptsTotal *prometheus.CounterVec
	requestsTotal        *prometheus.CounterVec
	requestDuration      prometheus.Histogram

	metricsOnce sync.Once
)

// initMetrics registers all session metrics. Lazy so library consumers
// that never connect don't pollute the default registry.
func initMetrics() {
	metricsOnce.Do(func() {
		connectAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitectl_connect_attempts_total",
				Help: "Total number of connect attempts",
			},
			[]string{"strategy", "status"},
		)

		requestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitectl_requests_total",
				Help: "Total number of requests issued through a connection",
			},
			[]string{"status"},
		)

		requestDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sitectl_request_duration_seconds",
				Help:    "Duration of requests issued through a connection",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 30, 120},
			},
		)
	})
}

func recordConnect(strategy, status string) {
	initMetrics()
	connectAttemptsTotal.WithLabelValues(strategy, status).Inc()
}

func observeRequest(elapsed time.Duration, ok bool) {
	initMetrics()
	status := "success"
	if !ok {
		status = "failure"
	}
	requestsTotal.WithLabelValues(status).Inc()
	requestDuration.Observe(elapsed.Seconds())
}
