package sim

import "github.com/kilianp07/crossroad/core/model"

// SpeedMode is the bit mask handed to the simulator's speed controller.
type SpeedMode int

const (
	// SpeedModeOff disables every simulator-side speed check so that the
	// speed set by the core is applied as is.
	SpeedModeOff SpeedMode = 0
	// SpeedModeDefault restores the simulator's own car-following logic.
	SpeedModeDefault SpeedMode = 31
)

// Adapter drives the simulated world. Every call is synchronous and a non-nil
// error is fatal for the run.
type Adapter interface {
	// Inject inserts a vehicle on route at the given entry lane and speed.
	Inject(id string, route model.Route, lane int, departSpeed float64) error
	// OverrideSpeedControl sets the speed mode of a vehicle.
	OverrideSpeedControl(id string, mode SpeedMode) error
	// SetSpeed forces the speed of a vehicle for the next step.
	SetSpeed(id string, speed float64) error
	// AdvanceStep moves the simulation forward by one step.
	AdvanceStep() error
}
