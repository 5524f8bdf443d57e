package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/crossroad/core/metrics"
	"github.com/kilianp07/crossroad/infra/logger"
)

// InfluxSink writes releases, control tick samples and run summaries to InfluxDB.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordRelease writes one vehicle_release point per released vehicle.
func (s *InfluxSink) RecordRelease(rs []coremetrics.Release) error {
	if len(rs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(rs))
	for _, r := range rs {
		points = append(points, write.NewPointWithMeasurement("vehicle_release").
			AddTag("run_id", r.RunID).
			AddTag("route", r.Route.Short()).
			AddTag("lane", strconv.Itoa(r.Lane)).
			AddField("vehicle_id", r.VehicleID).
			AddField("step", r.Step).
			AddField("delay_s", round3(r.DelaySeconds)).
			SetTime(r.Time))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordStep writes a control_tick point.
func (s *InfluxSink) RecordStep(sample coremetrics.StepSample) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("control_tick").
		AddTag("run_id", sample.RunID).
		AddField("step", sample.Step).
		AddField("generated", sample.Generated).
		AddField("on_road", sample.OnRoad).
		AddField("pending", sample.Pending).
		SetTime(sample.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSummary writes a run_summary point.
func (s *InfluxSink) RecordSummary(sum coremetrics.Summary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("run_summary").
		AddTag("run_id", sum.RunID).
		AddTag("optimizer", sum.Optimizer).
		AddField("hourly_volume", sum.HourlyVolume).
		AddField("steps", sum.Steps).
		AddField("generated", sum.Generated).
		AddField("released", sum.Released).
		AddField("departed", sum.Departed).
		AddField("total_delay_s", round3(sum.TotalDelay)).
		AddField("average_delay_s", round3(sum.AverageDelay)).
		AddField("delay_stddev_s", round3(sum.DelayStdDev)).
		SetTime(sum.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
