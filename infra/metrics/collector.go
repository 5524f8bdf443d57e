package metrics

import (
	"context"

	"github.com/kilianp07/crossroad/core/events"
	coremetrics "github.com/kilianp07/crossroad/core/metrics"
	"github.com/kilianp07/crossroad/infra/logger"
	"github.com/kilianp07/crossroad/internal/eventbus"
)

var collectorLogger = func() logger.Logger { return logger.New("event-collector") }

// StartEventCollector subscribes to the bus and forwards phase changes to
// sinks implementing PhaseRecorder. It stops when ctx is canceled or the bus
// is closed; the returned channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus eventbus.Bus[events.Event], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.PhaseRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	log := collectorLogger()
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				e, ok := ev.(events.PhaseEvent)
				if !ok {
					continue
				}
				if err := rec.RecordPhase(e.To); err != nil {
					log.Warnf("record phase %s at step %d: %v", e.To, e.Step, err)
				}
			}
		}
	}()
	return done
}
