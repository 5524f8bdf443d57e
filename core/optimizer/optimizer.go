// Package optimizer decides when each newly generated vehicle is released onto
// the road. Strategies are interchangeable behind the Optimizer interface and
// are created from configuration through the registry.
package optimizer

import "github.com/kilianp07/crossroad/core/model"

// Optimizer assigns release steps to demand.
type Optimizer interface {
	// Schedule returns one assignment per demand with a release step not
	// earlier than step.
	Schedule(demands []model.VehicleDemand, step int) ([]model.ScheduledAssignment, error)
	// TotalDelay returns the cumulative scheduling delay in seconds of every
	// assignment made so far.
	TotalDelay() float64
}
