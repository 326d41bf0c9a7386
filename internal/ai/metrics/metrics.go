package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	QueriesTotal *prometheus.CounterVec
	ModelLatency prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		QueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkpad_ai_queries_total",
			Help: "AI queries by outcome",
		}, []string{"outcome"}),
		ModelLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "inkpad_ai_model_latency_seconds",
			Help:    "Latency of external model calls",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
	}
}

func (m *Metrics) RecordQuery(outcome string) {
	m.QueriesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveModelLatency(d time.Duration) {
	m.ModelLatency.Observe(d.Seconds())
}
