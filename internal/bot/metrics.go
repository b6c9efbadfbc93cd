package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	UpdatesProcessed     *prometheus.CounterVec
	UpdateProcessingTime prometheus.Histogram
	CallbacksTotal       *prometheus.CounterVec
	ErrorsTotal          prometheus.Counter
	BroadcastsStarted    *prometheus.CounterVec
}

// NewMetrics регистрирует метрики в reg. С nil метрики не регистрируются (удобно в тестах).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UpdatesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_updates_processed_total",
			Help: "Total number of processed updates by kind",
		}, []string{"kind"}),

		UpdateProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		CallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_callbacks_total",
			Help: "Callback queries by kind",
		}, []string{"kind"}),

		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Panics recovered in update handlers",
		}),

		BroadcastsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_bot_broadcasts_started_total",
			Help: "Broadcast jobs launched by audience",
		}, []string{"audience"}),
	}
}
