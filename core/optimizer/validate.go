package optimizer

import (
	"errors"
	"fmt"

	"github.com/kilianp07/crossroad/core/model"
)

// ErrAssignmentMismatch is returned when an optimizer breaks its contract.
var ErrAssignmentMismatch = errors.New("assignment mismatch")

// Validate checks that assignments cover every demand exactly once, keep the
// demand's route, and never release before step or before generation.
func Validate(demands []model.VehicleDemand, assignments []model.ScheduledAssignment, step int) error {
	if len(assignments) != len(demands) {
		return fmt.Errorf("%w: %d assignments for %d demands", ErrAssignmentMismatch, len(assignments), len(demands))
	}
	byID := make(map[string]model.VehicleDemand, len(demands))
	for _, d := range demands {
		byID[d.ID] = d
	}
	seen := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		d, ok := byID[a.ID]
		if !ok {
			return fmt.Errorf("%w: unknown vehicle %s", ErrAssignmentMismatch, a.ID)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("%w: vehicle %s assigned twice", ErrAssignmentMismatch, a.ID)
		}
		seen[a.ID] = struct{}{}
		if a.Route != d.Route {
			return fmt.Errorf("%w: vehicle %s route %s, demanded %s", ErrAssignmentMismatch, a.ID, a.Route, d.Route)
		}
		if a.ReleaseStep < step || a.ReleaseStep < d.Step {
			return fmt.Errorf("%w: vehicle %s released at %d before step %d", ErrAssignmentMismatch, a.ID, a.ReleaseStep, step)
		}
	}
	return nil
}
