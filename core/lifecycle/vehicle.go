// Package lifecycle tracks released vehicles from injection until they are
// considered clear of the controlled area.
package lifecycle

import (
	"fmt"

	"github.com/kilianp07/crossroad/core/model"
	"github.com/kilianp07/crossroad/core/sim"
)

// State is the lifecycle state of a released vehicle.
type State int

const (
	StateEntering State = iota
	StateActive
	StateRemoved
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateEntering:
		return "entering"
	case StateActive:
		return "active"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Vehicle is a scheduled vehicle. Its budget counts the steps left until it is
// treated as departed; this is an estimate, not a simulator observation.
type Vehicle struct {
	Route       model.Route
	ID          string
	Lane        int
	ReleaseStep int
	budget      int
	state       State
}

// NewVehicle creates a vehicle in the Entering state.
func NewVehicle(route model.Route, id string, lane, releaseStep, budget int) *Vehicle {
	return &Vehicle{Route: route, ID: id, Lane: lane, ReleaseStep: releaseStep, budget: budget}
}

// Budget returns the remaining lifetime budget in steps.
func (v *Vehicle) Budget() int { return v.budget }

// State returns the current lifecycle state.
func (v *Vehicle) State() State { return v.state }

// Enter injects the vehicle and hands its speed control to the core.
func (v *Vehicle) Enter(a sim.Adapter, departSpeed float64) error {
	if v.state != StateEntering {
		return fmt.Errorf("vehicle %s: enter from state %s", v.ID, v.state)
	}
	if err := a.Inject(v.ID, v.Route, v.Lane, departSpeed); err != nil {
		return err
	}
	if err := a.OverrideSpeedControl(v.ID, sim.SpeedModeOff); err != nil {
		return err
	}
	v.state = StateActive
	return nil
}

// Tick consumes one step of budget and re-asserts the cruise speed. It reports
// true on the step the budget first reaches zero or below.
func (v *Vehicle) Tick(a sim.Adapter, cruiseSpeed float64) (bool, error) {
	if v.state != StateActive {
		return false, fmt.Errorf("vehicle %s: tick in state %s", v.ID, v.state)
	}
	v.budget--
	if err := a.SetSpeed(v.ID, cruiseSpeed); err != nil {
		return false, err
	}
	if err := a.OverrideSpeedControl(v.ID, sim.SpeedModeOff); err != nil {
		return false, err
	}
	if v.budget <= 0 {
		v.state = StateRemoved
		return true, nil
	}
	return false, nil
}
