// Package metrics provides Prometheus instrumentation for the journal API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "journal_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})

	// StatsCacheLookups counts stats cache reads by kind and result (hit, miss, error).
	StatsCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_stats_cache_lookups_total",
		Help: "Stats cache lookups",
	}, []string{"kind", "result"})

	// ComputeDuration tracks how long a derived view took to compute from trades.
	ComputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "journal_compute_duration_seconds",
		Help:    "Time spent computing stats, equity and calendar views",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// BalanceSyncs counts balance sync attempts by outcome (written, skipped, failed).
	BalanceSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_balance_syncs_total",
		Help: "Account balance sync attempts",
	}, []string{"outcome"})

	TradesScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "journal_trades_scanned_total",
		Help: "Trades fed through the stats engine",
	})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request metrics. The chi route pattern is used as the
// path label so /trades/{tradeID} stays a single series.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := routePattern(r)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// ObserveCompute times fn under the given kind label.
func ObserveCompute(kind string, fn func()) {
	start := time.Now()
	fn()
	ComputeDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
