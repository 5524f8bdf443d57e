package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/crossroad/core/demand"
	"github.com/kilianp07/crossroad/core/dispatch"
	"github.com/kilianp07/crossroad/core/events"
	"github.com/kilianp07/crossroad/core/lifecycle"
	"github.com/kilianp07/crossroad/core/logger"
	"github.com/kilianp07/crossroad/core/metrics"
	"github.com/kilianp07/crossroad/core/model"
	"github.com/kilianp07/crossroad/core/optimizer"
	"github.com/kilianp07/crossroad/core/sim"
	"github.com/kilianp07/crossroad/internal/eventbus"
)

// Config holds the step-level parameters of a run.
type Config struct {
	HorizonSteps      int
	ControlInterval   int
	LifetimeBudget    int
	StepLengthSeconds float64
	DepartSpeed       float64
	CruiseSpeed       float64

	// Reported in the run summary only.
	HourlyVolume  float64
	OptimizerName string
}

// Validate checks that the loop can make progress.
func (c Config) Validate() error {
	switch {
	case c.HorizonSteps < 0:
		return fmt.Errorf("horizon must not be negative, got %d", c.HorizonSteps)
	case c.ControlInterval <= 0:
		return fmt.Errorf("control interval must be positive, got %d", c.ControlInterval)
	case c.LifetimeBudget <= 0:
		return fmt.Errorf("lifetime budget must be positive, got %d", c.LifetimeBudget)
	case c.StepLengthSeconds <= 0:
		return fmt.Errorf("step length must be positive, got %g", c.StepLengthSeconds)
	}
	return nil
}

type queued struct {
	vehicle   *lifecycle.Vehicle
	generated int
}

// Loop drives demand generation, scheduling, release and lifetime tracking
// one simulation step at a time. It is not safe for concurrent use.
type Loop struct {
	cfg     Config
	routes  *model.RouteTable
	gen     *demand.Generator
	opt     optimizer.Optimizer
	adapter sim.Adapter

	queue *dispatch.Queue[queued]
	road  *lifecycle.Road

	log   logger.Logger
	sink  metrics.MetricsSink
	bus   eventbus.Bus[events.Event]
	runID string

	step      int
	phase     Phase
	generated int
	released  int
	departed  int
	delays    []float64
}

// Option customizes a Loop.
type Option func(*Loop)

// WithLogger sets the loop logger.
func WithLogger(l logger.Logger) Option {
	return func(lp *Loop) {
		if l != nil {
			lp.log = l
		}
	}
}

// WithMetricsSink sets the sink receiving releases, step samples and the summary.
func WithMetricsSink(s metrics.MetricsSink) Option {
	return func(lp *Loop) {
		if s != nil {
			lp.sink = s
		}
	}
}

// WithBus publishes loop events on b.
func WithBus(b eventbus.Bus[events.Event]) Option {
	return func(lp *Loop) { lp.bus = b }
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(lp *Loop) {
		if id != "" {
			lp.runID = id
		}
	}
}

// New assembles a control loop.
func New(cfg Config, routes *model.RouteTable, gen *demand.Generator, opt optimizer.Optimizer, adapter sim.Adapter, opts ...Option) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if routes == nil || gen == nil || opt == nil || adapter == nil {
		return nil, errors.New("control: routes, generator, optimizer and adapter are required")
	}
	l := &Loop{
		cfg:     cfg,
		routes:  routes,
		gen:     gen,
		opt:     opt,
		adapter: adapter,
		queue:   dispatch.NewQueue[queued](),
		road:    lifecycle.NewRoad(cfg.DepartSpeed, cfg.CruiseSpeed),
		log:     logger.Nop{},
		sink:    metrics.NopSink{},
		runID:   uuid.NewString(),
	}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

// Step returns the index of the next step to execute.
func (l *Loop) Step() int { return l.step }

// Phase returns the current phase.
func (l *Loop) Phase() Phase { return l.phase }

// RunID identifies this run in logs and metrics.
func (l *Loop) RunID() string { return l.runID }

// OnRoad returns the number of vehicles under speed control.
func (l *Loop) OnRoad() int { return l.road.Len() }

// Pending returns the number of vehicles waiting for release.
func (l *Loop) Pending() int { return l.queue.Pending() }

// Run executes steps until the loop terminates or an error occurs. The
// context is checked between steps only. The partial report is returned
// alongside any error.
func (l *Loop) Run(ctx context.Context) (Report, error) {
	l.log.Infof("run %s started: horizon=%d steps interval=%d budget=%d", l.runID, l.cfg.HorizonSteps, l.cfg.ControlInterval, l.cfg.LifetimeBudget)
	l.updatePhase()
	for l.phase != PhaseTerminated {
		if err := ctx.Err(); err != nil {
			l.log.Warnf("run %s canceled at step %d", l.runID, l.step)
			return l.Report(), err
		}
		if err := l.Advance(); err != nil {
			l.log.Errorf("run %s aborted at step %d: %v", l.runID, l.step, err)
			return l.Report(), err
		}
	}
	r := l.Report()
	l.recordSummary(r)
	l.log.Infof("run %s finished after %d steps: generated=%d average_delay=%.3fs", l.runID, r.Steps, r.Generated, r.AverageDelay)
	return r, nil
}

// Advance executes exactly one simulation step.
func (l *Loop) Advance() error {
	if l.phase == PhaseTerminated {
		return errors.New("control: loop already terminated")
	}
	if l.step < l.cfg.HorizonSteps && l.step%l.cfg.ControlInterval == 0 {
		if err := l.control(); err != nil {
			return err
		}
	}
	if err := l.release(); err != nil {
		return err
	}
	done, err := l.road.Step(l.adapter)
	if err != nil {
		return err
	}
	l.departed += len(done)
	if err := l.adapter.AdvanceStep(); err != nil {
		if !errors.Is(err, sim.ErrAdapterFailure) {
			err = sim.Failure("advance_step", "", err)
		}
		return err
	}
	stepsTotal.Inc()
	onRoadVehicles.Set(float64(l.road.Len()))
	queuedVehicles.Set(float64(l.queue.Pending()))
	l.step++
	l.updatePhase()
	return nil
}

func (l *Loop) control() error {
	demands := l.gen.Generate(l.step)
	controlTicks.Inc()
	l.generated += len(demands)
	for _, d := range demands {
		demandsGenerated.WithLabelValues(string(d.Route)).Inc()
	}

	start := time.Now()
	assignments, err := l.opt.Schedule(demands, l.step)
	scheduleLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("schedule at step %d: %w", l.step, err)
	}
	if err := optimizer.Validate(demands, assignments, l.step); err != nil {
		return err
	}

	generatedAt := make(map[string]int, len(demands))
	for _, d := range demands {
		generatedAt[d.ID] = d.Step
	}
	for _, a := range assignments {
		gen := generatedAt[a.ID]
		v := lifecycle.NewVehicle(a.Route, a.ID, l.routes.Lane(a.Route), a.ReleaseStep, l.cfg.LifetimeBudget)
		l.queue.Assign(a.ReleaseStep, queued{vehicle: v, generated: gen})
		l.delays = append(l.delays, float64(a.Delay(gen))*l.cfg.StepLengthSeconds)
	}

	l.log.Debugw("control tick", map[string]any{
		"step":      l.step,
		"generated": len(demands),
		"pending":   l.queue.Pending(),
		"on_road":   l.road.Len(),
	})
	if rec, ok := l.sink.(metrics.StepRecorder); ok {
		err := rec.RecordStep(metrics.StepSample{
			RunID:     l.runID,
			Step:      l.step,
			Generated: len(demands),
			OnRoad:    l.road.Len(),
			Pending:   l.queue.Pending(),
			Time:      time.Now(),
		})
		if err != nil {
			l.log.Warnf("record step %d: %v", l.step, err)
		}
	}
	return nil
}

func (l *Loop) release() error {
	due := l.queue.Drain(l.step)
	if len(due) == 0 {
		return nil
	}
	now := time.Now()
	recs := make([]metrics.Release, 0, len(due))
	for _, q := range due {
		if err := l.road.Admit(l.adapter, q.vehicle); err != nil {
			return err
		}
		l.released++
		delay := l.step - q.generated
		recs = append(recs, metrics.Release{
			RunID:        l.runID,
			Step:         l.step,
			VehicleID:    q.vehicle.ID,
			Route:        q.vehicle.Route,
			Lane:         q.vehicle.Lane,
			DelaySeconds: float64(delay) * l.cfg.StepLengthSeconds,
			Time:         now,
		})
	}
	if err := l.sink.RecordRelease(recs); err != nil {
		l.log.Warnf("record releases at step %d: %v", l.step, err)
	}
	return nil
}

func (l *Loop) updatePhase() {
	if l.step < l.cfg.HorizonSteps {
		return
	}
	next := PhaseDraining
	if l.road.Len() == 0 && l.queue.Pending() == 0 {
		next = PhaseTerminated
	}
	if next == l.phase {
		return
	}
	l.log.Infof("run %s: %s -> %s at step %d (on_road=%d pending=%d)", l.runID, l.phase, next, l.step, l.road.Len(), l.queue.Pending())
	l.publish(events.PhaseEvent{Step: l.step, From: l.phase.String(), To: next.String()})
	l.phase = next
}

// Report builds the run summary from the current state.
func (l *Loop) Report() Report {
	return buildReport(l.runID, l.step, l.generated, l.released, l.departed, l.opt.TotalDelay(), l.delays)
}

func (l *Loop) recordSummary(r Report) {
	rec, ok := l.sink.(metrics.SummaryRecorder)
	if !ok {
		return
	}
	err := rec.RecordSummary(metrics.Summary{
		RunID:        r.RunID,
		Optimizer:    l.cfg.OptimizerName,
		HourlyVolume: l.cfg.HourlyVolume,
		Steps:        r.Steps,
		Generated:    r.Generated,
		Released:     r.Released,
		Departed:     r.Departed,
		TotalDelay:   r.TotalDelay,
		AverageDelay: r.AverageDelay,
		DelayStdDev:  r.DelayStdDev,
		Time:         time.Now(),
	})
	if err != nil {
		l.log.Warnf("record summary: %v", err)
	}
}

func (l *Loop) publish(e events.Event) {
	if l.bus != nil {
		l.bus.Publish(e)
	}
}
