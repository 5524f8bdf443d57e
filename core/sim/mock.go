package sim

import (
	"fmt"

	"github.com/kilianp07/crossroad/core/model"
)

// Call is one command received by MockAdapter.
type Call struct {
	Op    string
	ID    string
	Route model.Route
	Lane  int
	Speed float64
	Mode  SpeedMode
}

// MockAdapter records every command and rejects duplicate injections.
type MockAdapter struct {
	Calls   []Call
	Steps   int
	FailIDs map[string]bool
	// AdvanceErr is returned by AdvanceStep when set.
	AdvanceErr error
	injected   map[string]bool
}

// NewMockAdapter creates a new MockAdapter.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{FailIDs: make(map[string]bool), injected: make(map[string]bool)}
}

// Inject implements Adapter.
func (m *MockAdapter) Inject(id string, route model.Route, lane int, departSpeed float64) error {
	if m.FailIDs[id] {
		return Failure("inject", id, fmt.Errorf("rejected"))
	}
	if m.injected[id] {
		return Failure("inject", id, fmt.Errorf("duplicate vehicle id"))
	}
	m.injected[id] = true
	m.Calls = append(m.Calls, Call{Op: "inject", ID: id, Route: route, Lane: lane, Speed: departSpeed})
	return nil
}

// OverrideSpeedControl implements Adapter.
func (m *MockAdapter) OverrideSpeedControl(id string, mode SpeedMode) error {
	m.Calls = append(m.Calls, Call{Op: "speed_mode", ID: id, Mode: mode})
	return nil
}

// SetSpeed implements Adapter.
func (m *MockAdapter) SetSpeed(id string, speed float64) error {
	m.Calls = append(m.Calls, Call{Op: "set_speed", ID: id, Speed: speed})
	return nil
}

// AdvanceStep implements Adapter.
func (m *MockAdapter) AdvanceStep() error {
	if m.AdvanceErr != nil {
		return m.AdvanceErr
	}
	m.Steps++
	return nil
}

// Count returns how many calls of op were recorded for id. An empty id
// matches every vehicle.
func (m *MockAdapter) Count(op, id string) int {
	n := 0
	for _, c := range m.Calls {
		if c.Op == op && (id == "" || c.ID == id) {
			n++
		}
	}
	return n
}
