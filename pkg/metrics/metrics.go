// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors registered by the service
type Metrics struct {
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	allocations    *prometheus.CounterVec
	unitsDebited   prometheus.Counter
}

// New creates and registers the service collectors on the given registry.
// Pass prometheus.DefaultRegisterer in main; tests use a fresh registry so
// collectors do not collide between test cases.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pharmastock_http_requests_total",
				Help: "Total HTTP requests by method, path and status code",
			},
			[]string{"method", "path", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pharmastock_http_request_duration_seconds",
				Help:    "HTTP request latency by method and path",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		allocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pharmastock_allocations_total",
				Help: "Sale allocations by outcome status",
			},
			[]string{"status"},
		),
		unitsDebited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pharmastock_units_debited_total",
				Help: "Total stock units debited by sale allocations",
			},
		),
	}

	reg.MustRegister(m.requestCounter, m.requestLatency, m.allocations, m.unitsDebited)
	return m
}

// ObserveAllocation records the outcome of one sale allocation
func (m *Metrics) ObserveAllocation(status string, unitsDebited int) {
	m.allocations.WithLabelValues(status).Inc()
	m.unitsDebited.Add(float64(unitsDebited))
}

// Middleware instruments HTTP handlers with request count and latency
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		m.requestCounter.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(wrapped.statusCode)).Inc()
		m.requestLatency.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the /metrics endpoint handler
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
