package journey

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts journeys by outcome and records by service and level.
type Metrics struct {
	Journeys *prometheus.CounterVec
	Records  *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Journeys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "journeysim",
			Name:      "journeys_total",
			Help:      "Simulated journeys by outcome.",
		}, []string{"outcome"}),
		Records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "journeysim",
			Name:      "records_total",
			Help:      "Log records emitted by service and level.",
		}, []string{"service", "level"}),
	}
	for _, c := range []prometheus.Collector{m.Journeys, m.Records} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
