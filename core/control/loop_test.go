package control

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crossroad/core/demand"
	"github.com/kilianp07/crossroad/core/events"
	"github.com/kilianp07/crossroad/core/metrics"
	"github.com/kilianp07/crossroad/core/model"
	"github.com/kilianp07/crossroad/core/optimizer"
	"github.com/kilianp07/crossroad/core/sim"
	"github.com/kilianp07/crossroad/internal/eventbus"
)

// scriptedSource returns 0 for the listed draw indexes and 0.99 otherwise.
type scriptedSource struct {
	hits  map[int]bool
	draws int
}

func (s *scriptedSource) Float64() float64 {
	i := s.draws
	s.draws++
	if s.hits[i] {
		return 0
	}
	return 0.99
}

// firstDrawOnly makes the first route of the table (route_WE) appear at step 0.
func firstDrawOnly() *scriptedSource { return &scriptedSource{hits: map[int]bool{0: true}} }

type stubOptimizer struct {
	release func(d model.VehicleDemand, step int) int
	drop    bool
	total   float64
}

func (s *stubOptimizer) Schedule(demands []model.VehicleDemand, step int) ([]model.ScheduledAssignment, error) {
	if s.drop && len(demands) > 0 {
		return nil, nil
	}
	out := make([]model.ScheduledAssignment, 0, len(demands))
	for _, d := range demands {
		r := step
		if s.release != nil {
			r = s.release(d, step)
		}
		out = append(out, model.ScheduledAssignment{Route: d.Route, ID: d.ID, ReleaseStep: r})
	}
	return out, nil
}

func (s *stubOptimizer) TotalDelay() float64 { return s.total }

type recordingSink struct {
	metrics.NopSink
	releases []metrics.Release
	samples  []metrics.StepSample
	summary  *metrics.Summary
}

func (r *recordingSink) RecordRelease(rs []metrics.Release) error {
	r.releases = append(r.releases, rs...)
	return nil
}

func (r *recordingSink) RecordStep(s metrics.StepSample) error {
	r.samples = append(r.samples, s)
	return nil
}

func (r *recordingSink) RecordSummary(s metrics.Summary) error {
	r.summary = &s
	return nil
}

func testConfig(horizon, budget int) Config {
	return Config{
		HorizonSteps:      horizon,
		ControlInterval:   10,
		LifetimeBudget:    budget,
		StepLengthSeconds: 0.1,
		DepartSpeed:       15,
		CruiseSpeed:       15,
	}
}

func newLoop(t *testing.T, cfg Config, src demand.Source, opt optimizer.Optimizer, a sim.Adapter, opts ...Option) *Loop {
	t.Helper()
	routes := model.DefaultRouteTable()
	gen, err := demand.New(routes, 14000, src)
	require.NoError(t, err)
	l, err := New(cfg, routes, gen, opt, a, opts...)
	require.NoError(t, err)
	return l
}

func TestLoopReleasesAtAssignedStep(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	a := sim.NewMockAdapter()
	opt := &stubOptimizer{release: func(model.VehicleDemand, int) int { return 5 }}
	l := newLoop(t, testConfig(100, 12), firstDrawOnly(), opt, a)

	for step := 0; step < 5; step++ {
		require.NoError(t, l.Advance())
		assert.Zero(t, a.Count("inject", ""), "nothing injected at step %d", step)
		assert.Equal(t, 1, l.Pending())
	}
	require.NoError(t, l.Advance())
	assert.Equal(t, 1, a.Count("inject", "WE_0"))
	assert.Equal(t, 0, l.Pending())
	assert.Equal(t, 1, l.OnRoad())

	require.Equal(t, "inject", a.Calls[0].Op)
	assert.Equal(t, model.RouteWE, a.Calls[0].Route)
	assert.Equal(t, 1, a.Calls[0].Lane)
	assert.Equal(t, 15.0, a.Calls[0].Speed)
	assert.Equal(t, sim.SpeedModeOff, a.Calls[1].Mode)
}

func TestLoopTerminatesAfterLastVehicleClears(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	a := sim.NewMockAdapter()
	opt := &stubOptimizer{release: func(model.VehicleDemand, int) int { return 95 }}
	l := newLoop(t, testConfig(100, 12), firstDrawOnly(), opt, a)

	for l.Step() < 106 {
		require.NoError(t, l.Advance())
		require.NotEqual(t, PhaseTerminated, l.Phase(), "terminated early at step %d", l.Step())
	}
	assert.Equal(t, PhaseDraining, l.Phase())

	rep, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PhaseTerminated, l.Phase())
	assert.Equal(t, 95+12, rep.Steps)
	assert.Equal(t, 1, rep.Generated)
	assert.Equal(t, 1, rep.Released)
	assert.Equal(t, 1, rep.Departed)
	assert.Equal(t, 12, a.Count("set_speed", "WE_0"))
	assert.Equal(t, rep.Steps, a.Steps)
	assert.InDelta(t, 9.5, rep.ObservedDelay, 1e-9)
}

func TestLoopWaitsForQueuedVehiclesAfterHorizon(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	a := sim.NewMockAdapter()
	opt := &stubOptimizer{release: func(model.VehicleDemand, int) int { return 150 }}
	l := newLoop(t, testConfig(100, 12), firstDrawOnly(), opt, a)

	rep, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Released)
	assert.Equal(t, 162, rep.Steps)
}

func TestLoopEmptyRunTerminatesAtHorizon(t *testing.T) {
	reg := prometheus.NewRegistry()
	ResetMetrics(reg)
	a := sim.NewMockAdapter()
	l := newLoop(t, testConfig(100, 12), &scriptedSource{}, &stubOptimizer{}, a)

	rep, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, rep.Steps)
	assert.Zero(t, rep.Generated)
	assert.Zero(t, rep.AverageDelay)
	assert.Equal(t, 10.0, testutil.ToFloat64(controlTicks))
	assert.Equal(t, 100.0, testutil.ToFloat64(stepsTotal))
}

func TestLoopZeroHorizonRunsNoStep(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	a := sim.NewMockAdapter()
	l := newLoop(t, testConfig(0, 12), &scriptedSource{}, &stubOptimizer{}, a)
	rep, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, rep.Steps)
	assert.Zero(t, a.Steps)
	assert.Error(t, l.Advance())
}

func TestLoopAssignmentMismatchIsFatal(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	a := sim.NewMockAdapter()
	l := newLoop(t, testConfig(100, 12), firstDrawOnly(), &stubOptimizer{drop: true}, a)

	_, err := l.Run(context.Background())
	require.ErrorIs(t, err, optimizer.ErrAssignmentMismatch)
	assert.Zero(t, a.Steps)
}

func TestLoopEarlyReleaseIsFatal(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	a := sim.NewMockAdapter()
	opt := &stubOptimizer{release: func(_ model.VehicleDemand, step int) int { return step - 1 }}
	l := newLoop(t, testConfig(100, 12), firstDrawOnly(), opt, a)

	_, err := l.Run(context.Background())
	assert.ErrorIs(t, err, optimizer.ErrAssignmentMismatch)
}

func TestLoopAdapterFailureIsFatal(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	a := sim.NewMockAdapter()
	a.FailIDs["WE_0"] = true
	l := newLoop(t, testConfig(100, 12), firstDrawOnly(), &stubOptimizer{}, a)

	rep, err := l.Run(context.Background())
	require.ErrorIs(t, err, sim.ErrAdapterFailure)
	var ae *sim.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "WE_0", ae.VehicleID)
	assert.Zero(t, rep.Steps)
}

func TestLoopWrapsAdvanceFailure(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	a := sim.NewMockAdapter()
	a.AdvanceErr = errors.New("connection closed")
	l := newLoop(t, testConfig(100, 12), &scriptedSource{}, &stubOptimizer{}, a)

	_, err := l.Run(context.Background())
	require.ErrorIs(t, err, sim.ErrAdapterFailure)
	assert.Contains(t, err.Error(), "connection closed")
}

func TestLoopHonorsCanceledContext(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := newLoop(t, testConfig(100, 12), &scriptedSource{}, &stubOptimizer{}, sim.NewMockAdapter())
	_, err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoopFeedsSinkAndBus(t *testing.T) {
	ResetMetrics(prometheus.NewRegistry())
	sink := &recordingSink{}
	bus := eventbus.NewTypedWithBuffer[events.Event](256)
	sub := bus.Subscribe()
	opt := &stubOptimizer{release: func(_ model.VehicleDemand, step int) int { return step + 3 }, total: 0.3}
	l := newLoop(t, testConfig(20, 4), firstDrawOnly(), opt, sim.NewMockAdapter(),
		WithMetricsSink(sink), WithBus(bus), WithRunID("run-1"))

	rep, err := l.Run(context.Background())
	require.NoError(t, err)
	bus.Close()

	assert.Equal(t, "run-1", rep.RunID)
	require.Len(t, sink.releases, 1)
	assert.Equal(t, "WE_0", sink.releases[0].VehicleID)
	assert.Equal(t, 3, sink.releases[0].Step)
	assert.InDelta(t, 0.3, sink.releases[0].DelaySeconds, 1e-9)
	assert.Len(t, sink.samples, 2)
	require.NotNil(t, sink.summary)
	assert.Equal(t, 1, sink.summary.Generated)
	assert.InDelta(t, 0.3, sink.summary.AverageDelay, 1e-9)

	var phases []string
	for ev := range sub {
		e, ok := ev.(events.PhaseEvent)
		require.True(t, ok, "unexpected event %T", ev)
		phases = append(phases, e.To)
	}
	assert.Equal(t, []string{"terminated"}, phases)
}

func TestNewRejectsBadConfig(t *testing.T) {
	routes := model.DefaultRouteTable()
	gen, err := demand.New(routes, 100, &scriptedSource{})
	require.NoError(t, err)
	cfg := testConfig(100, 12)
	cfg.ControlInterval = 0
	_, err = New(cfg, routes, gen, &stubOptimizer{}, sim.NewMockAdapter())
	assert.Error(t, err)
	_, err = New(testConfig(100, 12), routes, gen, nil, sim.NewMockAdapter())
	assert.Error(t, err)
}
