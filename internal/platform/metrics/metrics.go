package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the collectors exported on /metrics.
var Registry = prometheus.NewRegistry()

// RegistryOperations counts profile registry operations by outcome.
var RegistryOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "linkhub",
		Name:      "registry_operations_total",
		Help:      "Profile registry operations by operation and result.",
	},
	[]string{"operation", "result"},
)

// AuthFailures counts rejected bearer tokens by reason.
var AuthFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "linkhub",
		Name:      "auth_failures_total",
		Help:      "Rejected authentication attempts by reason.",
	},
	[]string{"reason"},
)

// RequestDuration observes HTTP latency by route pattern, so path
// parameters do not explode label cardinality.
var RequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "linkhub",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

func init() {
	Registry.MustRegister(
		RegistryOperations,
		AuthFailures,
		RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveOperation records one registry operation.
func ObserveOperation(operation, result string) {
	RegistryOperations.WithLabelValues(operation, result).Inc()
}

// ObserveAuthFailure records one rejected authentication attempt.
func ObserveAuthFailure(reason string) {
	AuthFailures.WithLabelValues(reason).Inc()
}

// Middleware records RequestDuration for every request. Unmatched requests
// use the route label "unmatched".
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			RequestDuration.
				WithLabelValues(r.Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
		})
	}
}

// Handler serves the Prometheus text exposition for Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
