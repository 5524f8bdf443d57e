package control

// Phase is the control loop state.
type Phase int

const (
	// PhaseRunning generates demand at every control tick.
	PhaseRunning Phase = iota
	// PhaseDraining waits for queued and on-road vehicles after the horizon.
	PhaseDraining
	// PhaseTerminated is final.
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
