package app

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/kilianp07/crossroad/config"
	"github.com/kilianp07/crossroad/core/control"
	"github.com/kilianp07/crossroad/core/demand"
	"github.com/kilianp07/crossroad/core/events"
	"github.com/kilianp07/crossroad/core/factory"
	coremetrics "github.com/kilianp07/crossroad/core/metrics"
	"github.com/kilianp07/crossroad/core/model"
	"github.com/kilianp07/crossroad/core/optimizer"
	"github.com/kilianp07/crossroad/core/sim"
	"github.com/kilianp07/crossroad/infra/bridge"
	"github.com/kilianp07/crossroad/infra/logger"
	"github.com/kilianp07/crossroad/infra/metrics"
	"github.com/kilianp07/crossroad/infra/sumo"
	"github.com/kilianp07/crossroad/internal/eventbus"
	"github.com/kilianp07/crossroad/simulator"
)

// eventBuffer holds every phase change of a run.
const eventBuffer = 8

// Service wires a configuration into a runnable control loop.
type Service struct {
	Loop    *control.Loop
	Adapter sim.Adapter

	cfg         *config.Config
	sink        coremetrics.MetricsSink
	bus         *eventbus.TypedBus[events.Event]
	log         logger.Logger
	promEnabled bool
	closers     []func()
}

// Option customizes service construction.
type Option func(*options)

type options struct {
	adapter sim.Adapter
	sink    coremetrics.MetricsSink
	runID   string
}

// WithAdapter replaces the configured simulation adapter.
func WithAdapter(a sim.Adapter) Option { return func(o *options) { o.adapter = a } }

// WithMetricsSink replaces the configured metrics sinks.
func WithMetricsSink(s coremetrics.MetricsSink) Option { return func(o *options) { o.sink = s } }

// WithRunID fixes the run identifier.
func WithRunID(id string) Option { return func(o *options) { o.runID = id } }

// New creates a Service from the configuration. The simulator environment is
// checked here so that a missing installation aborts before any scheduling.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.New("service")
	svc := &Service{cfg: cfg, log: log}

	routes := model.DefaultRouteTable()
	adapter := o.adapter
	if adapter == nil {
		a, closeFn, err := newAdapter(cfg, routes)
		if err != nil {
			return nil, err
		}
		adapter = a
		if closeFn != nil {
			svc.closers = append(svc.closers, closeFn)
		}
	}
	svc.Adapter = adapter

	sc := cfg.Simulation
	gen, err := demand.New(routes, sc.HourlyVolume, rand.New(rand.NewSource(sc.Seed)))
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("demand generator: %w", err)
	}
	opt, err := optimizer.New(optimizerConfig(cfg))
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("optimizer %s: %w", cfg.Optimizer.Type, err)
	}

	sink := o.sink
	if sink == nil {
		sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		for _, s := range cfg.Metrics.Sinks {
			if s.Type == "prometheus" {
				svc.promEnabled = true
			}
		}
	}
	svc.sink = sink
	svc.bus = eventbus.NewTypedWithBuffer[events.Event](eventBuffer)

	loopCfg := control.Config{
		HorizonSteps:      sc.HorizonSteps(),
		ControlInterval:   sc.ControlIntervalSteps,
		LifetimeBudget:    sc.LifetimeBudget(),
		StepLengthSeconds: sc.StepLengthSeconds,
		DepartSpeed:       sc.CruiseSpeedMPS,
		CruiseSpeed:       sc.CruiseSpeedMPS,
		HourlyVolume:      sc.HourlyVolume,
		OptimizerName:     cfg.Optimizer.Type,
	}
	loop, err := control.New(loopCfg, routes, gen, opt, adapter,
		control.WithLogger(logger.New("control")),
		control.WithMetricsSink(sink),
		control.WithBus(svc.bus),
		control.WithRunID(o.runID),
	)
	if err != nil {
		svc.Close()
		return nil, fmt.Errorf("control loop: %w", err)
	}
	svc.Loop = loop
	return svc, nil
}

func newAdapter(cfg *config.Config, routes *model.RouteTable) (sim.Adapter, func(), error) {
	switch cfg.Simulator.Mode {
	case config.ModeBridge:
		if cfg.Simulator.SUMOConfig != "" {
			bin, err := sumo.Locate(cfg.Simulation.IsHeadless())
			if err != nil {
				return nil, nil, err
			}
			logger.New("service").Infof("simulator side should run: %v", bin.Args(cfg.Simulator.SUMOConfig, "tripinfo.xml"))
		}
		a, err := bridge.NewAdapter(cfg.Simulator.Bridge)
		if err != nil {
			return nil, nil, fmt.Errorf("bridge: %w", err)
		}
		return a, a.Close, nil
	default:
		k, err := simulator.New(kinematicConfig(cfg), routes)
		if err != nil {
			return nil, nil, fmt.Errorf("kinematic simulator: %w", err)
		}
		return k, nil, nil
	}
}

func kinematicConfig(cfg *config.Config) simulator.Config {
	return simulator.Config{
		StepLengthSeconds: cfg.Simulation.StepLengthSeconds,
		RouteLengthM:      cfg.Simulator.RouteLengthM,
		MaxSpeedMPS:       cfg.Simulation.CruiseSpeedMPS,
	}
}

// optimizerConfig fills the step length and seed from the simulation section
// unless the optimizer configuration sets them.
func optimizerConfig(cfg *config.Config) factory.ModuleConfig {
	conf := make(map[string]any, len(cfg.Optimizer.Conf)+2)
	for k, v := range cfg.Optimizer.Conf {
		conf[k] = v
	}
	if _, ok := conf["step_length_seconds"]; !ok {
		conf["step_length_seconds"] = cfg.Simulation.StepLengthSeconds
	}
	if _, ok := conf["seed"]; !ok {
		conf["seed"] = cfg.Simulation.Seed
	}
	return factory.ModuleConfig{Type: cfg.Optimizer.Type, Conf: conf}
}

// Run executes the control loop to completion.
func (s *Service) Run(ctx context.Context) (control.Report, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(runCtx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	collected := metrics.StartEventCollector(runCtx, s.bus, s.sink)
	report, err := s.Loop.Run(ctx)
	s.bus.Close()
	<-collected
	return report, err
}

// Close releases the adapter and sinks.
func (s *Service) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
	switch c := s.sink.(type) {
	case interface{ Close() error }:
		if err := c.Close(); err != nil {
			s.log.Warnf("close metrics sink: %v", err)
		}
	case interface{ Close() }:
		c.Close()
	}
}

// ServeSimulator exposes an in-process kinematic simulator on the bridge
// topics until ctx is canceled or the control side disconnects.
func ServeSimulator(ctx context.Context, cfg *config.Config) error {
	k, err := simulator.New(kinematicConfig(cfg), model.DefaultRouteTable())
	if err != nil {
		return err
	}
	return bridge.NewResponder(cfg.Simulator.Bridge, k).Serve(ctx)
}
