package metrics

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crossroad/core/factory"
	coremetrics "github.com/kilianp07/crossroad/core/metrics"
	"github.com/kilianp07/crossroad/core/model"
	"github.com/kilianp07/crossroad/infra/releaselog"
)

func TestReleaseLogSinksFromConfig(t *testing.T) {
	dir := t.TempDir()
	sink, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{
		{Type: "jsonl", Conf: map[string]any{"path": filepath.Join(dir, "releases.jsonl")}},
		{Type: "sqlite", Conf: map[string]any{"path": filepath.Join(dir, "releases.db")}},
	})
	require.NoError(t, err)
	multi, ok := sink.(*coremetrics.MultiSink)
	require.True(t, ok)
	require.Len(t, multi.Sinks, 2)

	require.NoError(t, sink.RecordRelease([]coremetrics.Release{{RunID: "r", VehicleID: "WE_0", Route: model.RouteWE}}))
	for _, s := range multi.Sinks {
		rs, ok := s.(*releaselog.Sink)
		require.True(t, ok)
		recs, err := rs.Store.Query(context.Background(), releaselog.Query{RunID: "r"})
		require.NoError(t, err)
		assert.Len(t, recs, 1)
	}
	assert.NoError(t, multi.Close())
}

func TestUnknownSinkType(t *testing.T) {
	_, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "statsd"}})
	assert.Error(t, err)
}
