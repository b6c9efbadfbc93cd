package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "signalbot"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)

	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Actions rejected by the per-user rate limiter.",
		},
		[]string{"action"},
	)

	duplicateCallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_callbacks_total",
			Help:      "Callback queries dropped as already processed.",
		},
	)

	broadcastMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_messages_total",
			Help:      "Broadcast deliveries by outcome.",
		},
		[]string{"outcome"},
	)

	postbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postbacks_total",
			Help:      "Affiliate postbacks by event and result.",
		},
		[]string{"event", "result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, rateLimited, duplicateCallbacks, broadcastMessages, postbacks)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint, code string) {
	httpRequests.WithLabelValues(endpoint, code).Inc()
}

func IncRateLimited(action string) {
	rateLimited.WithLabelValues(action).Inc()
}

func IncDuplicateCallback() {
	duplicateCallbacks.Inc()
}

// IncBroadcast outcome: sent, blocked, chat_not_found, other.
func IncBroadcast(outcome string) {
	broadcastMessages.WithLabelValues(outcome).Inc()
}

func IncPostback(event, result string) {
	postbacks.WithLabelValues(event, result).Inc()
}
