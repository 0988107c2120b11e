package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fertadvisor_recommendations_total",
			Help: "Recommendations served, by answering source and crop",
		},
		[]string{"source", "crop"},
	)

	remoteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fertadvisor_remote_scoring_failures_total",
			Help: "Remote scoring calls that fell back to the local engine",
		},
	)

	configurationErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fertadvisor_configuration_errors_total",
			Help: "Requests for crops missing from the crop table",
		},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fertadvisor_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fertadvisor_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// prometheusMiddleware records latency per chi route pattern.
func prometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		httpRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).
			Observe(time.Since(start).Seconds())
	})
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
