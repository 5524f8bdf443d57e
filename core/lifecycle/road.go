package lifecycle

import "github.com/kilianp07/crossroad/core/sim"

// Road is the set of active vehicles. A vehicle belongs to the road from the
// moment it is admitted until its budget runs out.
type Road struct {
	departSpeed float64
	cruiseSpeed float64
	active      []*Vehicle
}

// NewRoad returns an empty road that injects vehicles at departSpeed and keeps
// them at cruiseSpeed.
func NewRoad(departSpeed, cruiseSpeed float64) *Road {
	return &Road{departSpeed: departSpeed, cruiseSpeed: cruiseSpeed}
}

// Admit injects v into the simulator and adds it to the road.
func (r *Road) Admit(a sim.Adapter, v *Vehicle) error {
	if err := v.Enter(a, r.departSpeed); err != nil {
		return err
	}
	r.active = append(r.active, v)
	return nil
}

// Step ticks every active vehicle once and returns those that departed.
func (r *Road) Step(a sim.Adapter) ([]*Vehicle, error) {
	kept := r.active[:0:0]
	var departed []*Vehicle
	for _, v := range r.active {
		done, err := v.Tick(a, r.cruiseSpeed)
		if err != nil {
			return nil, err
		}
		if done {
			departed = append(departed, v)
			continue
		}
		kept = append(kept, v)
	}
	r.active = kept
	return departed, nil
}

// Len returns the number of active vehicles.
func (r *Road) Len() int { return len(r.active) }

// Snapshot returns a copy of the active set.
func (r *Road) Snapshot() []*Vehicle {
	out := make([]*Vehicle, len(r.active))
	copy(out, r.active)
	return out
}
