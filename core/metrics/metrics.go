package metrics

import (
	"time"

	"github.com/kilianp07/crossroad/core/model"
)

// Release describes one vehicle entering the road.
type Release struct {
	RunID        string
	Step         int
	VehicleID    string
	Route        model.Route
	Lane         int
	DelaySeconds float64
	Time         time.Time
}

// MetricsSink records vehicle releases.
type MetricsSink interface {
	RecordRelease(rs []Release) error
}

// StepSample is a snapshot of the loop state taken at a control tick.
type StepSample struct {
	RunID     string
	Step      int
	Generated int
	OnRoad    int
	Pending   int
	Time      time.Time
}

// StepRecorder records loop snapshots.
type StepRecorder interface {
	RecordStep(s StepSample) error
}

// Summary is the outcome of a complete run.
type Summary struct {
	RunID        string
	Optimizer    string
	HourlyVolume float64
	Steps        int
	Generated    int
	Released     int
	Departed     int
	TotalDelay   float64
	AverageDelay float64
	DelayStdDev  float64
	Time         time.Time
}

// SummaryRecorder records run summaries.
type SummaryRecorder interface {
	RecordSummary(s Summary) error
}

// PhaseRecorder records control loop phase changes.
type PhaseRecorder interface {
	RecordPhase(phase string) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRelease([]Release) error { return nil }
func (NopSink) RecordStep(StepSample) error   { return nil }
func (NopSink) RecordSummary(Summary) error   { return nil }
func (NopSink) RecordPhase(string) error      { return nil }
