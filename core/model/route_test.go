package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRouteTable(t *testing.T) {
	tbl := DefaultRouteTable()
	require.Equal(t, 12, tbl.Len())

	lanes := map[Route]int{
		RouteWE: 1, RouteWN: 2, RouteWS: 0,
		RouteEW: 1, RouteEN: 0, RouteES: 2,
		RouteNE: 2, RouteNW: 0, RouteNS: 1,
		RouteSE: 0, RouteSN: 1, RouteSW: 2,
	}
	for r, lane := range lanes {
		assert.Equal(t, lane, tbl.Lane(r), "lane of %s", r)
	}
	assert.Equal(t, -1, tbl.Lane("route_XX"))

	through := 0
	for _, s := range tbl.Specs() {
		if s.Movement == MovementThrough {
			through++
			assert.Equal(t, 1, s.Lane, "through routes use the middle lane")
		}
	}
	assert.Equal(t, 4, through)
	assert.Equal(t, RouteWE, tbl.Routes()[0])
	assert.Equal(t, RouteSW, tbl.Routes()[11])
}

func TestRouteTableIsImmutable(t *testing.T) {
	tbl := DefaultRouteTable()
	specs := tbl.Specs()
	specs[0].Lane = 2
	specs[0].Edges[0] = "X"
	s, ok := tbl.Lookup(RouteWE)
	require.True(t, ok)
	assert.Equal(t, 1, s.Lane)
	assert.Equal(t, "L1", s.Edges[0])

	s.Edges[1] = "Y"
	again, ok := tbl.Lookup(RouteWE)
	require.True(t, ok)
	assert.Equal(t, []string{"L1", "L2", "L11", "L12"}, again.Edges)

	src := []string{"A1", "A2"}
	own, err := NewRouteTable([]RouteSpec{{Route: RouteWE, Lane: 1, Edges: src}})
	require.NoError(t, err)
	src[0] = "Z"
	assert.Equal(t, "A1", own.Specs()[0].Edges[0])
}

func TestNewRouteTableErrors(t *testing.T) {
	_, err := NewRouteTable(nil)
	assert.Error(t, err)
	_, err = NewRouteTable([]RouteSpec{{Route: RouteWE, Lane: 3}})
	assert.Error(t, err)
	_, err = NewRouteTable([]RouteSpec{{Route: RouteWE, Lane: 1}, {Route: RouteWE, Lane: 0}})
	assert.Error(t, err)
	_, err = NewRouteTable([]RouteSpec{{Route: "bogus", Lane: 1}})
	assert.Error(t, err)
}

func TestRouteParts(t *testing.T) {
	assert.Equal(t, "WN", RouteWN.Short())
	assert.Equal(t, byte('W'), RouteWN.Origin())
	assert.Equal(t, byte('N'), RouteWN.Destination())
	assert.Equal(t, "left", MovementLeft.String())
}

func TestVehicleID(t *testing.T) {
	assert.Equal(t, "WE_120", VehicleID(RouteWE, 120))
}

func TestLifetimeBudget(t *testing.T) {
	assert.Equal(t, 120, LifetimeBudget(DefaultMaxLengthToControlM, DefaultCruiseSpeedMPS, DefaultStepLengthSeconds))
	assert.Equal(t, 12, LifetimeBudget(18, 15, 0.1))
	assert.Equal(t, 1, LifetimeBudget(0, 15, 0.1))
	assert.Equal(t, 36000, HorizonSteps(DefaultHorizonSeconds, DefaultStepLengthSeconds))
}
