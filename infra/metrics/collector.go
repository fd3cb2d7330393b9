package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/sprintplan/core/events"
	coremetrics "github.com/kilianp07/sprintplan/core/metrics"
	"github.com/kilianp07/sprintplan/core/monitoring"
	"github.com/kilianp07/sprintplan/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records overflow
// events on sinks implementing coremetrics.OverflowRecorder. It stops when
// the context is canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.PlanSink) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.OverflowRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer monitoring.Recover()
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				e, ok := ev.(events.OverflowEvent)
				if !ok {
					continue
				}
				err := rec.RecordOverflow(coremetrics.OverflowRecord{
					PlanID:   e.PlanID,
					Sprint:   e.Sprint,
					Resource: e.Resource,
					Role:     e.Role.String(),
					Hours:    e.Hours,
					Capacity: e.Capacity,
					Time:     time.Now(),
				})
				monitoring.Capture(err, "metrics-collector")
			}
		}
	}()
}
