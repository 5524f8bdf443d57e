// Package releaselog persists every release decision so a run can be audited
// after the fact.
package releaselog

import (
	"context"
	"time"

	coremetrics "github.com/kilianp07/crossroad/core/metrics"
	"github.com/kilianp07/crossroad/core/model"
)

// Record is one vehicle release as it was decided by the control loop.
type Record struct {
	Timestamp    time.Time   `json:"timestamp"`
	RunID        string      `json:"run_id"`
	Step         int         `json:"step"`
	VehicleID    string      `json:"vehicle_id"`
	Route        model.Route `json:"route"`
	Lane         int         `json:"lane"`
	DelaySeconds float64     `json:"delay_s"`
}

// FromRelease converts a metrics release into a log record.
func FromRelease(r coremetrics.Release) Record {
	return Record{
		Timestamp:    r.Time,
		RunID:        r.RunID,
		Step:         r.Step,
		VehicleID:    r.VehicleID,
		Route:        r.Route,
		Lane:         r.Lane,
		DelaySeconds: r.DelaySeconds,
	}
}

// Query filters records. Zero fields match everything.
type Query struct {
	RunID     string
	VehicleID string
	Route     model.Route
	MinDelay  float64
}

func (q Query) match(r Record) bool {
	switch {
	case q.RunID != "" && r.RunID != q.RunID:
		return false
	case q.VehicleID != "" && r.VehicleID != q.VehicleID:
		return false
	case q.Route != "" && r.Route != q.Route:
		return false
	case r.DelaySeconds < q.MinDelay:
		return false
	}
	return true
}

// Store persists records and supports querying.
type Store interface {
	Append(ctx context.Context, recs ...Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Sink adapts a Store to the metrics sink interface.
type Sink struct {
	Store Store
}

// NewSink wraps store.
func NewSink(store Store) *Sink { return &Sink{Store: store} }

// RecordRelease appends one record per release.
func (s *Sink) RecordRelease(rs []coremetrics.Release) error {
	if len(rs) == 0 {
		return nil
	}
	recs := make([]Record, len(rs))
	for i, r := range rs {
		recs[i] = FromRelease(r)
	}
	return s.Store.Append(context.Background(), recs...)
}

// Close closes the underlying store.
func (s *Sink) Close() error { return s.Store.Close() }
