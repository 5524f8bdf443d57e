package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/crossroad/core/metrics"
)

// PromSink exposes releases, run summaries and loop phases as Prometheus metrics.
type PromSink struct {
	releases *prometheus.CounterVec
	delay    *prometheus.HistogramVec
	average  prometheus.Gauge
	vehicles *prometheus.GaugeVec
	phase    *prometheus.GaugeVec
}

var phases = []string{"running", "draining", "terminated"}

// NewPromSink registers the sink collectors on the default registerer. The
// HTTP endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the sink collectors on reg. A nil
// registerer defaults to the global one. Collectors already registered by a
// previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vehicles_released_total",
			Help: "Vehicles injected into the simulator",
		}, []string{"route"}),
		delay: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vehicle_release_delay_seconds",
			Help:    "Time between demand generation and release",
			Buckets: []float64{0, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"route"}),
		average: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "run_average_delay_seconds",
			Help: "Optimizer total delay per generated vehicle for the last finished run",
		}),
		vehicles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "run_vehicles",
			Help: "Vehicle counts of the last finished run",
		}, []string{"stage"}),
		phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "control_phase",
			Help: "1 for the current control loop phase",
		}, []string{"phase"}),
	}
	var err error
	if s.releases, err = register(reg, s.releases); err != nil {
		return nil, err
	}
	if s.delay, err = register(reg, s.delay); err != nil {
		return nil, err
	}
	if s.average, err = register(reg, s.average); err != nil {
		return nil, err
	}
	if s.vehicles, err = register(reg, s.vehicles); err != nil {
		return nil, err
	}
	if s.phase, err = register(reg, s.phase); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRelease counts releases and observes their delay.
func (s *PromSink) RecordRelease(rs []coremetrics.Release) error {
	for _, r := range rs {
		route := r.Route.Short()
		s.releases.WithLabelValues(route).Inc()
		s.delay.WithLabelValues(route).Observe(r.DelaySeconds)
	}
	return nil
}

// RecordSummary publishes the outcome of a run.
func (s *PromSink) RecordSummary(sum coremetrics.Summary) error {
	s.average.Set(sum.AverageDelay)
	s.vehicles.WithLabelValues("generated").Set(float64(sum.Generated))
	s.vehicles.WithLabelValues("released").Set(float64(sum.Released))
	s.vehicles.WithLabelValues("departed").Set(float64(sum.Departed))
	return nil
}

// RecordPhase marks phase as the current one.
func (s *PromSink) RecordPhase(phase string) error {
	for _, p := range phases {
		v := 0.0
		if p == phase {
			v = 1
		}
		s.phase.WithLabelValues(p).Set(v)
	}
	return nil
}
