package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/crossroad/core/metrics"
	"github.com/kilianp07/crossroad/core/model"
)

func TestPromSinkRecordRelease(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordRelease([]coremetrics.Release{
		{VehicleID: "WE_0", Route: model.RouteWE, DelaySeconds: 0.5},
		{VehicleID: "WE_10", Route: model.RouteWE, DelaySeconds: 1.5},
		{VehicleID: "NS_10", Route: model.RouteNS},
	}))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.releases.WithLabelValues("WE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.releases.WithLabelValues("NS")))
	assert.Equal(t, 2, testutil.CollectAndCount(sink.delay))
}

func TestPromSinkSummaryAndPhase(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordSummary(coremetrics.Summary{Generated: 50, Released: 50, Departed: 49, AverageDelay: 6}))
	assert.Equal(t, 6.0, testutil.ToFloat64(sink.average))
	assert.Equal(t, 49.0, testutil.ToFloat64(sink.vehicles.WithLabelValues("departed")))

	require.NoError(t, sink.RecordPhase("draining"))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.phase.WithLabelValues("draining")))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.phase.WithLabelValues("running")))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, second.RecordRelease([]coremetrics.Release{{Route: model.RouteSN}}))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.releases.WithLabelValues("SN")))
}
