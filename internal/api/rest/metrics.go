package rest

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes tracked by the pipeline.
const (
	outcomeAccepted         = "accepted"
	outcomeOriginDenied     = "origin_denied"
	outcomeBotRejected      = "bot_rejected"
	outcomeValidationFailed = "validation_failed"
	outcomeRateLimited      = "rate_limited"
	outcomeTransportFailed  = "transport_failed"
	outcomeConfigError      = "config_error"
	outcomeMalformed        = "malformed"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadgate",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "leadgate",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path"},
	)

	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadgate",
			Subsystem: "pipeline",
			Name:      "submissions_total",
			Help:      "Form submissions by pipeline outcome",
		},
		[]string{"outcome"},
	)

	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadgate",
			Subsystem: "pipeline",
			Name:      "deliveries_total",
			Help:      "Notification delivery attempts by destination role and result",
		},
		[]string{"destination", "result"},
	)
)

// MetricsHandler returns the Prometheus metrics endpoint handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

func recordSubmission(outcome string) {
	submissionsTotal.WithLabelValues(outcome).Inc()
}

func recordDelivery(destination string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	deliveriesTotal.WithLabelValues(destination, result).Inc()
}

// metricsMiddleware records request counts and latency per path.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, statusCodeClass(wrapped.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// statusCodeClass returns the status code class (2xx, 3xx, 4xx, 5xx).
func statusCodeClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
