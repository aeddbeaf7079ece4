package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	importRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_import_runs_total",
			Help: "Total number of lead import runs by final status",
		},
		[]string{"status"},
	)

	importRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_import_rows_total",
			Help: "Total number of imported spreadsheet rows by outcome",
		},
		[]string{"outcome"},
	)

	importSkippedTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_import_skipped_ticks_total",
			Help: "Scheduler ticks dropped because an import was already running",
		},
	)

	importRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lead_import_run_duration_seconds",
			Help:    "Duration of lead import runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	alertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_alerts_total",
			Help: "New-lead alerts sent to agents by channel and result",
		},
		[]string{"channel", "result"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Metrics records request counts and latency under the matched route pattern
// so path parameters do not explode label cardinality.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// ImportMetrics feeds the ingestion engine, the scheduler and the alert
// worker into Prometheus.
type ImportMetrics struct{}

func (ImportMetrics) RecordImportRun(status string, d time.Duration) {
	importRunsTotal.WithLabelValues(status).Inc()
	importRunDuration.Observe(d.Seconds())
}

func (ImportMetrics) RecordImportRow(outcome string) {
	importRowsTotal.WithLabelValues(outcome).Inc()
}

func (ImportMetrics) RecordSkippedTick() {
	importSkippedTicks.Inc()
}

func (ImportMetrics) RecordAlert(channel string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	alertsTotal.WithLabelValues(channel, result).Inc()
}
