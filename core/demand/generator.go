// Package demand samples new vehicles on every route of the intersection.
package demand

import (
	"fmt"

	"github.com/kilianp07/crossroad/core/model"
)

// Source is the random stream consumed by the generator. *rand.Rand
// satisfies it.
type Source interface {
	Float64() float64
}

// Thresholds are the per-tick appearance probabilities of each movement class.
type Thresholds struct {
	Through float64
	Left    float64
	Right   float64
}

// ThresholdsFor splits an hourly volume target into movement thresholds.
func ThresholdsFor(hourlyVolume float64) Thresholds {
	return Thresholds{
		Through: model.ThroughShare * hourlyVolume / model.VolumeNormalizer,
		Left:    model.TurnShare * hourlyVolume / model.VolumeNormalizer,
		Right:   model.TurnShare * hourlyVolume / model.VolumeNormalizer,
	}
}

// For returns the threshold that applies to m.
func (t Thresholds) For(m model.Movement) float64 {
	switch m {
	case model.MovementThrough:
		return t.Through
	case model.MovementLeft:
		return t.Left
	case model.MovementRight:
		return t.Right
	default:
		return 0
	}
}

// Generator draws one Bernoulli trial per route per control tick.
type Generator struct {
	routes     *model.RouteTable
	thresholds Thresholds
	rng        Source
	generated  int
}

// New creates a generator for the given hourly volume.
func New(routes *model.RouteTable, hourlyVolume float64, rng Source) (*Generator, error) {
	if routes == nil {
		return nil, fmt.Errorf("route table is required")
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if hourlyVolume < 0 {
		return nil, fmt.Errorf("hourly volume must not be negative")
	}
	return &Generator{routes: routes, thresholds: ThresholdsFor(hourlyVolume), rng: rng}, nil
}

// Thresholds returns the thresholds in use.
func (g *Generator) Thresholds() Thresholds { return g.thresholds }

// Generated returns the number of demands produced so far.
func (g *Generator) Generated() int { return g.generated }

// Generate samples every route once, in table order, and returns the demands
// that appeared at step. A draw is consumed for every route even when its
// threshold is zero so the stream position only depends on the call count.
func (g *Generator) Generate(step int) []model.VehicleDemand {
	var out []model.VehicleDemand
	for _, spec := range g.routes.Specs() {
		if g.rng.Float64() < g.thresholds.For(spec.Movement) {
			out = append(out, model.VehicleDemand{
				Route: spec.Route,
				ID:    model.VehicleID(spec.Route, step),
				Step:  step,
			})
		}
	}
	g.generated += len(out)
	return out
}
