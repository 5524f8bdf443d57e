package scenarios

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("testdata/*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenarios found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestEmptyIntersection(t *testing.T) {
	report := RunScenario(t, &Scenario{Name: "empty", HorizonSeconds: 10, Optimizer: "fifo"})
	if report.Generated != 0 || report.AverageDelay != 0 {
		t.Fatalf("expected an idle run, got %+v", report)
	}
	if report.Steps != 100 {
		t.Fatalf("expected 100 steps, got %d", report.Steps)
	}
}

func TestOptimizersSeeSameDemand(t *testing.T) {
	base := Scenario{Name: "busy", HourlyVolume: 4000, HorizonSeconds: 60, Seed: 3, Expected: Expected{MaxAverageDelay: 1e9, Drained: true}}
	fifo, annealing := base, base
	fifo.Optimizer, annealing.Optimizer = "fifo", "annealing"
	a := RunScenario(t, &fifo)
	b := RunScenario(t, &annealing)
	if a.Generated != b.Generated {
		t.Fatalf("same seed generated %d and %d vehicles", a.Generated, b.Generated)
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(":"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestScenarioConfigRejectsNegativeVolume(t *testing.T) {
	if _, err := (Scenario{Name: "bad", HourlyVolume: -1, Optimizer: "fifo"}).Config(); err == nil {
		t.Fatal("expected validation error")
	}
}
