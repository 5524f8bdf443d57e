package simulator

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kilianp07/crossroad/core/model"
	"github.com/kilianp07/crossroad/core/sim"
)

var (
	errDuplicate   = errors.New("duplicate vehicle id")
	errUnknownID   = errors.New("unknown vehicle")
	errInvalidLane = errors.New("invalid lane")
	errNoRoute     = errors.New("unknown route")
)

type vehicle struct {
	id       string
	route    model.Route
	lane     int
	position float64
	speed    float64
	mode     sim.SpeedMode
}

// VehicleState is a read-only view of a simulated vehicle.
type VehicleState struct {
	ID       string
	Route    model.Route
	Lane     int
	Position float64
	Speed    float64
	Mode     sim.SpeedMode
}

// Kinematic is a constant-speed simulator. It is safe for concurrent use.
type Kinematic struct {
	cfg    Config
	routes *model.RouteTable

	mu       sync.Mutex
	step     int
	vehicles map[string]*vehicle
	seen     map[string]struct{}
	arrived  int
}

// New returns an empty kinematic simulator for the given route table.
func New(cfg Config, routes *model.RouteTable) (*Kinematic, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if routes == nil {
		return nil, errors.New("route table is required")
	}
	return &Kinematic{
		cfg:      cfg,
		routes:   routes,
		vehicles: make(map[string]*vehicle),
		seen:     make(map[string]struct{}),
	}, nil
}

// Inject implements sim.Adapter. Identifiers may never be reused, even after
// the vehicle has left the network.
func (k *Kinematic) Inject(id string, route model.Route, lane int, departSpeed float64) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.seen[id]; ok {
		return sim.Failure("inject", id, errDuplicate)
	}
	spec, ok := k.routes.Lookup(route)
	if !ok {
		return sim.Failure("inject", id, fmt.Errorf("%w %q", errNoRoute, route))
	}
	if lane < 0 || lane >= model.LaneCount {
		return sim.Failure("inject", id, fmt.Errorf("%w %d", errInvalidLane, lane))
	}
	if departSpeed < 0 {
		return sim.Failure("inject", id, fmt.Errorf("negative depart speed %g", departSpeed))
	}
	k.seen[id] = struct{}{}
	k.vehicles[id] = &vehicle{id: id, route: spec.Route, lane: lane, speed: departSpeed, mode: sim.SpeedModeDefault}
	return nil
}

// OverrideSpeedControl implements sim.Adapter.
func (k *Kinematic) OverrideSpeedControl(id string, mode sim.SpeedMode) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.vehicles[id]
	if !ok {
		return sim.Failure("speed_mode", id, errUnknownID)
	}
	v.mode = mode
	return nil
}

// SetSpeed implements sim.Adapter.
func (k *Kinematic) SetSpeed(id string, speed float64) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.vehicles[id]
	if !ok {
		return sim.Failure("set_speed", id, errUnknownID)
	}
	if speed < 0 {
		return sim.Failure("set_speed", id, fmt.Errorf("negative speed %g", speed))
	}
	v.speed = speed
	return nil
}

// AdvanceStep implements sim.Adapter. Vehicles under native control are held
// to the maximum speed; overridden vehicles keep whatever speed was set.
func (k *Kinematic) AdvanceStep() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for id, v := range k.vehicles {
		if v.mode != sim.SpeedModeOff && v.speed > k.cfg.MaxSpeedMPS {
			v.speed = k.cfg.MaxSpeedMPS
		}
		v.position += v.speed * k.cfg.StepLengthSeconds
		if v.position >= k.cfg.RouteLengthM {
			delete(k.vehicles, id)
			k.arrived++
		}
	}
	k.step++
	return nil
}

// Step returns the number of steps advanced so far.
func (k *Kinematic) Step() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.step
}

// Arrived returns how many vehicles have left the network.
func (k *Kinematic) Arrived() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.arrived
}

// Vehicles returns the vehicles still in the network ordered by id.
func (k *Kinematic) Vehicles() []VehicleState {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]VehicleState, 0, len(k.vehicles))
	for _, v := range k.vehicles {
		out = append(out, VehicleState{ID: v.id, Route: v.route, Lane: v.lane, Position: v.position, Speed: v.speed, Mode: v.mode})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
