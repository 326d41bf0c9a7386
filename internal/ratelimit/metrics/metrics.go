package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ChecksTotal     *prometheus.CounterVec
	ViolationsTotal *prometheus.CounterVec
	DegradedMode    prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		ChecksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkpad_ratelimit_checks_total",
			Help: "Total rate limit acquisitions by policy and outcome",
		}, []string{"policy", "outcome"}),
		ViolationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inkpad_ratelimit_violations_total",
			Help: "Total denied acquisitions by policy",
		}, []string{"policy"}),
		DegradedMode: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "inkpad_ratelimit_degraded_mode",
			Help: "1 while the limiter serves from the in-process fallback store",
		}),
	}
}

func (m *Metrics) RecordCheck(policy string, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
		m.ViolationsTotal.WithLabelValues(policy).Inc()
	}
	m.ChecksTotal.WithLabelValues(policy, outcome).Inc()
}

func (m *Metrics) SetDegraded(degraded bool) {
	if degraded {
		m.DegradedMode.Set(1)
		return
	}
	m.DegradedMode.Set(0)
}
