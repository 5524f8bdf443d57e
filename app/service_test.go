package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crossroad/config"
	"github.com/kilianp07/crossroad/core/control"
	coremetrics "github.com/kilianp07/crossroad/core/metrics"
	"github.com/kilianp07/crossroad/core/sim"
	"github.com/kilianp07/crossroad/simulator"
)

type recordingSink struct {
	coremetrics.NopSink
	mu       sync.Mutex
	released int
	phases   []string
	summary  *coremetrics.Summary
}

func (r *recordingSink) RecordRelease(rs []coremetrics.Release) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released += len(rs)
	return nil
}

func (r *recordingSink) RecordSummary(s coremetrics.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary = &s
	return nil
}

func (r *recordingSink) RecordPhase(p string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, p)
	return nil
}

func testConfig(optimizer string) *config.Config {
	cfg := &config.Config{}
	cfg.Simulation.HourlyVolume = 3000
	cfg.Simulation.HorizonSeconds = 30
	cfg.Optimizer.Type = optimizer
	cfg.SetDefaults()
	return cfg
}

func TestServiceRunKinematic(t *testing.T) {
	for _, name := range []string{"fifo", "annealing"} {
		t.Run(name, func(t *testing.T) {
			sink := &recordingSink{}
			svc, err := New(testConfig(name), WithMetricsSink(sink), WithRunID("run-1"))
			require.NoError(t, err)
			defer svc.Close()
			require.IsType(t, &simulator.Kinematic{}, svc.Adapter)

			report, err := svc.Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, "run-1", report.RunID)
			assert.Equal(t, control.PhaseTerminated, svc.Loop.Phase())
			assert.GreaterOrEqual(t, report.Steps, 300)
			assert.Positive(t, report.Generated)
			assert.Equal(t, report.Generated, report.Released)
			assert.Equal(t, report.Released, report.Departed)
			assert.GreaterOrEqual(t, report.AverageDelay, 0.0)

			sink.mu.Lock()
			defer sink.mu.Unlock()
			assert.Equal(t, report.Released, sink.released)
			require.NotNil(t, sink.summary)
			assert.Equal(t, name, sink.summary.Optimizer)
			require.NotEmpty(t, sink.phases)
			assert.Equal(t, "terminated", sink.phases[len(sink.phases)-1])
		})
	}
}

func TestServiceSeedIsReproducible(t *testing.T) {
	run := func() control.Report {
		svc, err := New(testConfig("annealing"), WithMetricsSink(coremetrics.NopSink{}))
		require.NoError(t, err)
		defer svc.Close()
		r, err := svc.Run(context.Background())
		require.NoError(t, err)
		return r
	}
	a, b := run(), run()
	assert.Equal(t, a.Generated, b.Generated)
	assert.Equal(t, a.TotalDelay, b.TotalDelay)
	assert.Equal(t, a.Steps, b.Steps)
}

func TestServiceWithAdapter(t *testing.T) {
	mock := sim.NewMockAdapter()
	svc, err := New(testConfig("fifo"), WithAdapter(mock), WithMetricsSink(coremetrics.NopSink{}))
	require.NoError(t, err)
	defer svc.Close()

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, report.Released, mock.Count("inject", ""))
	assert.Equal(t, report.Steps, mock.Steps)
}

func TestServiceUnknownOptimizer(t *testing.T) {
	_, err := New(testConfig("genetic"), WithMetricsSink(coremetrics.NopSink{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "genetic")
}

func TestServiceBridgeWithoutBroker(t *testing.T) {
	cfg := testConfig("fifo")
	cfg.Simulator.Mode = config.ModeBridge
	_, err := New(cfg)
	assert.ErrorIs(t, err, sim.ErrMissingEnvironment)
}

func TestServiceMissingSUMO(t *testing.T) {
	t.Setenv("SUMO_HOME", "")
	cfg := testConfig("fifo")
	cfg.Simulator.Mode = config.ModeBridge
	cfg.Simulator.SUMOConfig = "data/cross.sumocfg"
	cfg.Simulator.Bridge.Broker = "tcp://127.0.0.1:1"
	_, err := New(cfg)
	assert.ErrorIs(t, err, sim.ErrMissingEnvironment)
}

func TestServeSimulatorWithoutBroker(t *testing.T) {
	err := ServeSimulator(context.Background(), testConfig("fifo"))
	assert.ErrorIs(t, err, sim.ErrMissingEnvironment)
}

func TestOptimizerConfigKeepsExplicitValues(t *testing.T) {
	cfg := testConfig("fifo")
	cfg.Optimizer.Conf = map[string]any{"seed": 9}
	mc := optimizerConfig(cfg)
	assert.Equal(t, 9, mc.Conf["seed"])
	assert.Equal(t, cfg.Simulation.StepLengthSeconds, mc.Conf["step_length_seconds"])
}
