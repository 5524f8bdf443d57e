package control

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Report summarizes a finished run. Delays are in seconds.
type Report struct {
	RunID     string
	Steps     int
	Generated int
	Released  int
	Departed  int
	// TotalDelay is the optimizer's own running aggregate.
	TotalDelay float64
	// AverageDelay is TotalDelay per generated vehicle.
	AverageDelay float64
	// ObservedDelay sums release minus generation step over all assignments.
	ObservedDelay float64
	DelayStdDev   float64
	MaxDelay      float64
}

// AverageDelay returns total divided by n, or 0 when nothing was generated.
func AverageDelay(total float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return total / float64(n)
}

// Headline formats the report the way operators read it.
func (r Report) Headline(hourlyVolume float64) string {
	return fmt.Sprintf("Delay time of %.0f vehicles/hr: %g s/vehicle", hourlyVolume, r.AverageDelay)
}

func buildReport(runID string, steps, generated, released, departed int, total float64, delays []float64) Report {
	r := Report{
		RunID:        runID,
		Steps:        steps,
		Generated:    generated,
		Released:     released,
		Departed:     departed,
		TotalDelay:   total,
		AverageDelay: AverageDelay(total, generated),
	}
	if len(delays) == 0 {
		return r
	}
	r.ObservedDelay = floats.Sum(delays)
	r.MaxDelay = floats.Max(delays)
	if len(delays) > 1 {
		if sd := stat.StdDev(delays, nil); !math.IsNaN(sd) {
			r.DelayStdDev = sd
		}
	}
	return r
}
