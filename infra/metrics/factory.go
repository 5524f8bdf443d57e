package metrics

import (
	"github.com/kilianp07/crossroad/core/factory"
	coremetrics "github.com/kilianp07/crossroad/core/metrics"
	"github.com/kilianp07/crossroad/infra/releaselog"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink()
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})

	_ = coremetrics.RegisterMetricsSink("jsonl", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		c := struct {
			Path       string `json:"path"`
			MaxSizeMB  int    `json:"max_size_mb"`
			MaxBackups int    `json:"max_backups"`
			MaxAgeDays int    `json:"max_age_days"`
		}{Path: "logs/releases.jsonl", MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 7}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		store, err := releaselog.NewJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
		if err != nil {
			return nil, err
		}
		return releaselog.NewSink(store), nil
	})

	_ = coremetrics.RegisterMetricsSink("sqlite", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		c := struct {
			Path string `json:"path"`
		}{Path: "releases.db"}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		store, err := releaselog.NewSQLiteStore(c.Path)
		if err != nil {
			return nil, err
		}
		return releaselog.NewSink(store), nil
	})
}
