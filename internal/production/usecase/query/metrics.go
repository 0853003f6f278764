package query

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts planning reads. A nil *Metrics records nothing.
type Metrics struct {
	availabilityChecks *prometheus.CounterVec
	usageCache         *prometheus.CounterVec
}

// NewMetrics registers the planning metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		availabilityChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "erp",
				Name:      "material_availability_checks_total",
				Help:      "Material availability checks by outcome",
			},
			[]string{"outcome"},
		),
		usageCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "erp",
				Name:      "material_usage_cache_requests_total",
				Help:      "Material usage report cache lookups by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.availabilityChecks, m.usageCache)
	return m
}

func (m *Metrics) availability(outcome string) {
	if m == nil {
		return
	}
	m.availabilityChecks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) cache(result string) {
	if m == nil {
		return
	}
	m.usageCache.WithLabelValues(result).Inc()
}
