package control

import "github.com/prometheus/client_golang/prometheus"

var (
	controlTicks     prometheus.Counter
	stepsTotal       prometheus.Counter
	demandsGenerated *prometheus.CounterVec
	onRoadVehicles   prometheus.Gauge
	queuedVehicles   prometheus.Gauge
	scheduleLatency  prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, prometheus.Counter, *prometheus.CounterVec, prometheus.Gauge, prometheus.Gauge, prometheus.Histogram) {
	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "control_ticks_total",
		Help: "Number of control ticks that sampled demand",
	})
	steps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "control_steps_total",
		Help: "Number of simulation steps advanced",
	})
	gen := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "demands_generated_total",
		Help: "Number of vehicle demands generated",
	}, []string{"route"})
	road := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "on_road_vehicles",
		Help: "Vehicles currently under speed control",
	})
	queued := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_queue_pending",
		Help: "Vehicles waiting for their release step",
	})
	lat := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_schedule_seconds",
		Help:    "Wall time spent in a single optimizer schedule call",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
	return ticks, steps, gen, road, queued, lat
}

func init() {
	controlTicks, stepsTotal, demandsGenerated, onRoadVehicles, queuedVehicles, scheduleLatency = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers control loop metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(controlTicks, stepsTotal, demandsGenerated, onRoadVehicles, queuedVehicles, scheduleLatency)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	controlTicks, stepsTotal, demandsGenerated, onRoadVehicles, queuedVehicles, scheduleLatency = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
