package model

import "fmt"

// VehicleDemand is a vehicle that appeared on a route at a control tick.
type VehicleDemand struct {
	Route Route
	ID    string
	Step  int
}

// ScheduledAssignment is the release decision for one demand.
type ScheduledAssignment struct {
	Route       Route
	ID          string
	ReleaseStep int
}

// Delay returns the number of steps between generation and release.
func (a ScheduledAssignment) Delay(generated int) int { return a.ReleaseStep - generated }

// VehicleID builds the identifier of a vehicle generated on r at step.
// Each route samples at most once per step so the result is unique.
func VehicleID(r Route, step int) string {
	return fmt.Sprintf("%s_%d", r.Short(), step)
}
