// Package metrics exposes Prometheus instrumentation for the context service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CacheHitsTotal counts lookups answered from the issue cache.
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jiractx_cache_hits_total",
			Help: "Total number of issue cache hits.",
		},
	)

	// CacheMissesTotal counts lookups with no entry for the current window.
	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jiractx_cache_misses_total",
			Help: "Total number of issue cache misses.",
		},
	)

	// CacheLoadsTotal counts loader invocations by outcome (found, absent, error).
	CacheLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jiractx_cache_loads_total",
			Help: "Total number of upstream issue loads by outcome.",
		},
		[]string{"outcome"},
	)

	// JiraRequestSeconds is the latency of issue lookups against JIRA.
	JiraRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jiractx_jira_request_seconds",
			Help:    "Latency of JIRA issue requests in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"status_code"},
	)

	// HTTPLatencySeconds is the latency of inbound HTTP requests.
	HTTPLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jiractx_http_latency_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method", "status_code"},
	)
)

// Register is called once at startup to register metrics with the default registry.
func Register() {
	prometheus.MustRegister(
		CacheHitsTotal,
		CacheMissesTotal,
		CacheLoadsTotal,
		JiraRequestSeconds,
		HTTPLatencySeconds,
	)
}

// Handler exposes the /metrics endpoint for Prometheus to scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records latency for each HTTP request, labelled by route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &StatusRecorder{
			ResponseWriter: w,
			StatusCode:     http.StatusOK,
		}

		next.ServeHTTP(rec, r)

		// Route patterns keep label cardinality bounded.
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		HTTPLatencySeconds.
			WithLabelValues(route, r.Method, strconv.Itoa(rec.StatusCode)).
			Observe(time.Since(start).Seconds())
	})
}

// StatusRecorder captures the status code written by a handler.
type StatusRecorder struct {
	http.ResponseWriter
	StatusCode int
}

// WriteHeader records code and forwards it.
func (r *StatusRecorder) WriteHeader(code int) {
	r.StatusCode = code
	r.ResponseWriter.WriteHeader(code)
}
