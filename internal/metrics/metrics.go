package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "virgil_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "virgil_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "virgil_llm_requests_total",
			Help: "Total number of LLM completion attempts by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	LLMFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "virgil_llm_fallbacks_total",
			Help: "Total number of chat replies served from the canned fallback set.",
		},
	)

	RemindersDeliveredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "virgil_reminders_delivered_total",
			Help: "Total number of reminders marked delivered, by path (push or pull).",
		},
		[]string{"path"},
	)

	ActiveWSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "virgil_ws_connections_active",
			Help: "Number of live notification WebSocket connections.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		LLMRequestsTotal,
		LLMFallbacksTotal,
		RemindersDeliveredTotal,
		ActiveWSConnections,
	)
}
