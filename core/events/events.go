package events

// Event is anything published by the control loop.
type Event interface {
	// At returns the simulation step the event belongs to.
	At() int
}

// PhaseEvent is published when the control loop changes phase.
type PhaseEvent struct {
	Step int
	From string
	To   string
}

func (e PhaseEvent) At() int { return e.Step }
