// Package metrics exposes cycler activity to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/photo-cycler/backend/internal/cycler"
)

type PrometheusMetrics struct {
	cycles      *prometheus.CounterVec
	cycleErrors *prometheus.CounterVec
	candidates  prometheus.Gauge
	updateRate  prometheus.Gauge
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		cycles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photo_cycler_cycles_total",
				Help: "Total number of publish cycles by result",
			},
			[]string{"result"},
		),
		cycleErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photo_cycler_cycle_errors_total",
				Help: "Total number of failed publish cycles by stage",
			},
			[]string{"stage"},
		),
		candidates: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "photo_cycler_candidates",
				Help: "Number of photos eligible in the last cycle",
			},
		),
		updateRate: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "photo_cycler_update_rate_seconds",
				Help: "Configured interval between publish cycles",
			},
		),
	}
}

func (p *PrometheusMetrics) ObserveCycle(result string, candidates int) {
	p.cycles.WithLabelValues(result).Inc()
	p.candidates.Set(float64(candidates))
}

func (p *PrometheusMetrics) ObserveCycleError(stage string) {
	p.cycleErrors.WithLabelValues(stage).Inc()
}

func (p *PrometheusMetrics) SetUpdateRate(seconds float64) {
	p.updateRate.Set(seconds)
}

var _ cycler.Metrics = (*PrometheusMetrics)(nil)
