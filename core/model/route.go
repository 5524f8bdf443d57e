package model

import (
	"fmt"
	"slices"
	"strings"
)

// Route identifies one directional movement through the intersection.
type Route string

const (
	RouteWE Route = "route_WE"
	RouteWN Route = "route_WN"
	RouteWS Route = "route_WS"
	RouteEW Route = "route_EW"
	RouteEN Route = "route_EN"
	RouteES Route = "route_ES"
	RouteNE Route = "route_NE"
	RouteNW Route = "route_NW"
	RouteNS Route = "route_NS"
	RouteSE Route = "route_SE"
	RouteSN Route = "route_SN"
	RouteSW Route = "route_SW"
)

// Short returns the route name without its "route_" prefix, e.g. "WE".
func (r Route) Short() string { return strings.TrimPrefix(string(r), "route_") }

// Origin returns the approach the route enters from ('W', 'E', 'N' or 'S').
func (r Route) Origin() byte {
	s := r.Short()
	if len(s) != 2 {
		return 0
	}
	return s[0]
}

// Destination returns the approach the route leaves through.
func (r Route) Destination() byte {
	s := r.Short()
	if len(s) != 2 {
		return 0
	}
	return s[1]
}

// Movement is the turning class of a route.
type Movement int

const (
	MovementThrough Movement = iota
	MovementLeft
	MovementRight
)

// String returns a human-readable representation of the movement.
func (m Movement) String() string {
	switch m {
	case MovementThrough:
		return "through"
	case MovementLeft:
		return "left"
	case MovementRight:
		return "right"
	default:
		return "unknown"
	}
}

// LaneCount is the number of entry lanes on every approach.
const LaneCount = 3

// RouteSpec holds the static properties of a route.
type RouteSpec struct {
	Route    Route
	Lane     int
	Movement Movement
	Edges    []string
}

func (s RouteSpec) clone() RouteSpec {
	s.Edges = slices.Clone(s.Edges)
	return s
}

// RouteTable is the immutable set of routes known to the intersection. The
// order of the table is the order in which demand is sampled.
type RouteTable struct {
	specs []RouteSpec
	index map[Route]int
}

// NewRouteTable validates specs and builds a table from them.
func NewRouteTable(specs []RouteSpec) (*RouteTable, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("route table is empty")
	}
	t := &RouteTable{specs: make([]RouteSpec, len(specs)), index: make(map[Route]int, len(specs))}
	for i, s := range specs {
		if s.Lane < 0 || s.Lane >= LaneCount {
			return nil, fmt.Errorf("route %s: lane %d out of range", s.Route, s.Lane)
		}
		if s.Route.Origin() == 0 || s.Route.Destination() == 0 {
			return nil, fmt.Errorf("route %s: malformed name", s.Route)
		}
		if _, dup := t.index[s.Route]; dup {
			return nil, fmt.Errorf("route %s defined twice", s.Route)
		}
		t.specs[i] = s.clone()
		t.index[s.Route] = i
	}
	return t, nil
}

// DefaultRouteTable returns the twelve movements of the four-way crossing.
func DefaultRouteTable() *RouteTable {
	t, err := NewRouteTable([]RouteSpec{
		{Route: RouteWE, Lane: 1, Movement: MovementThrough, Edges: []string{"L1", "L2", "L11", "L12"}},
		{Route: RouteWN, Lane: 2, Movement: MovementLeft, Edges: []string{"L1", "L2", "L15", "L16"}},
		{Route: RouteWS, Lane: 0, Movement: MovementRight, Edges: []string{"L1", "L2", "L7", "L8"}},
		{Route: RouteEW, Lane: 1, Movement: MovementThrough, Edges: []string{"L9", "L10", "L3", "L4"}},
		{Route: RouteEN, Lane: 0, Movement: MovementRight, Edges: []string{"L9", "L10", "L15", "L16"}},
		{Route: RouteES, Lane: 2, Movement: MovementLeft, Edges: []string{"L9", "L10", "L7", "L8"}},
		{Route: RouteNE, Lane: 2, Movement: MovementLeft, Edges: []string{"L13", "L14", "L11", "L12"}},
		{Route: RouteNW, Lane: 0, Movement: MovementRight, Edges: []string{"L13", "L14", "L3", "L4"}},
		{Route: RouteNS, Lane: 1, Movement: MovementThrough, Edges: []string{"L13", "L14", "L7", "L8"}},
		{Route: RouteSE, Lane: 0, Movement: MovementRight, Edges: []string{"L5", "L6", "L11", "L12"}},
		{Route: RouteSN, Lane: 1, Movement: MovementThrough, Edges: []string{"L5", "L6", "L15", "L16"}},
		{Route: RouteSW, Lane: 2, Movement: MovementLeft, Edges: []string{"L5", "L6", "L3", "L4"}},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of routes.
func (t *RouteTable) Len() int { return len(t.specs) }

// Specs returns a copy of the route specifications in table order.
func (t *RouteTable) Specs() []RouteSpec {
	out := make([]RouteSpec, len(t.specs))
	for i, s := range t.specs {
		out[i] = s.clone()
	}
	return out
}

// Routes returns the route identifiers in table order.
func (t *RouteTable) Routes() []Route {
	out := make([]Route, len(t.specs))
	for i, s := range t.specs {
		out[i] = s.Route
	}
	return out
}

// Lookup returns the specification of r.
func (t *RouteTable) Lookup(r Route) (RouteSpec, bool) {
	i, ok := t.index[r]
	if !ok {
		return RouteSpec{}, false
	}
	return t.specs[i].clone(), true
}

// Lane returns the entry lane of r, or -1 when r is unknown.
func (t *RouteTable) Lane(r Route) int {
	i, ok := t.index[r]
	if !ok {
		return -1
	}
	return t.specs[i].Lane
}
