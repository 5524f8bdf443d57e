package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/kilianp07/crossroad/app"
	"github.com/kilianp07/crossroad/core/control"
	"github.com/kilianp07/crossroad/infra/metrics"
)

// RunScenario runs sc end to end against the kinematic simulator and checks
// the expected bounds.
func RunScenario(t *testing.T, sc *Scenario) control.Report {
	t.Helper()
	cfg, err := sc.Config()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	svc, err := app.New(cfg, app.WithMetricsSink(sink))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer svc.Close()

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	exp := sc.Expected
	if report.Generated < exp.MinGenerated {
		t.Errorf("scenario %s expected at least %d vehicles, got %d", sc.Name, exp.MinGenerated, report.Generated)
	}
	if exp.MaxGenerated > 0 && report.Generated > exp.MaxGenerated {
		t.Errorf("scenario %s expected at most %d vehicles, got %d", sc.Name, exp.MaxGenerated, report.Generated)
	}
	if report.AverageDelay > exp.MaxAverageDelay {
		t.Errorf("scenario %s average delay %.2fs exceeds %.2fs", sc.Name, report.AverageDelay, exp.MaxAverageDelay)
	}
	if exp.Drained && report.Departed != report.Released {
		t.Errorf("scenario %s left %d vehicles on the road", sc.Name, report.Released-report.Departed)
	}
	if report.Released != report.Generated {
		t.Errorf("scenario %s released %d of %d vehicles", sc.Name, report.Released, report.Generated)
	}
	if got := sumCounter(t, reg, "vehicles_released_total"); int(got) != report.Released {
		t.Errorf("scenario %s exported %v releases, report has %d", sc.Name, got, report.Released)
	}
	return report
}

func sumCounter(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += counterValue(m)
		}
	}
	return total
}

func counterValue(m *dto.Metric) float64 {
	if c := m.GetCounter(); c != nil {
		return c.GetValue()
	}
	return 0
}
