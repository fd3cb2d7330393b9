package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kilianp07/sprintplan/core/events"
	"github.com/kilianp07/sprintplan/core/monitoring"
	coremqtt "github.com/kilianp07/sprintplan/core/mqtt"
	"github.com/kilianp07/sprintplan/infra/logger"
	"github.com/kilianp07/sprintplan/internal/eventbus"
)

// PublisherConfig selects topics and delivery settings for plan events.
type PublisherConfig struct {
	Topics Topics
	QoS    map[string]byte
	Retain bool
	// Timeout bounds a single publish.
	Timeout time.Duration
}

type planMessage struct {
	PlanID     string    `json:"plan_id"`
	Sprints    int       `json:"sprints"`
	Blocks     int       `json:"blocks"`
	Entries    int       `json:"entries"`
	Score      float64   `json:"score"`
	Overflow   int       `json:"overflow_count"`
	Unassigned int       `json:"unassigned"`
	Transfers  int       `json:"transfers"`
	DurationMS int64     `json:"duration_ms"`
	Time       time.Time `json:"time"`
}

type overflowMessage struct {
	PlanID   string  `json:"plan_id"`
	Sprint   int     `json:"sprint"`
	Resource string  `json:"resource"`
	Role     string  `json:"role"`
	Hours    float64 `json:"hours"`
	Capacity float64 `json:"capacity"`
}

type optimizerMessage struct {
	Sprints  int     `json:"sprints"`
	Score    float64 `json:"score"`
	Overflow int     `json:"overflow_count"`
	Met      bool    `json:"met"`
}

// StartPlanPublisher forwards plan, overflow and optimizer events from the
// bus to MQTT until ctx is canceled or the bus is closed.
func StartPlanPublisher(ctx context.Context, bus eventbus.EventBus, pub coremqtt.Publisher, cfg PublisherConfig) {
	if bus == nil || pub == nil {
		return
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Topics == (Topics{}) {
		cfg.Topics = NewTopics(DefaultPrefix)
	}
	log := logger.New("mqtt_publisher")
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
				topic, kind, msg := route(cfg.Topics, ev)
				if topic == "" {
					continue
				}
				payload, err := json.Marshal(msg)
				if err != nil {
					log.Errorf("encode %s event: %v", kind, err)
					continue
				}
				pctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
				err = pub.Publish(pctx, topic, payload, cfg.QoS[kind], cfg.Retain && kind == "plan")
				cancel()
				if err != nil {
					log.Errorf("publish %s event: %v", kind, err)
				}
			}
		}
	}()
}

// route maps an event to its topic, QoS key and message.
func route(t Topics, ev eventbus.Event) (string, string, any) {
	switch e := ev.(type) {
	case events.PlanEvent:
		return t.Plan(e.PlanID), "plan", planMessage{
			PlanID:     e.PlanID,
			Sprints:    e.Sprints,
			Blocks:     e.Blocks,
			Entries:    e.Entries,
			Score:      e.Score,
			Overflow:   e.Overflow,
			Unassigned: e.Unassigned,
			Transfers:  e.Transfers,
			DurationMS: e.Duration.Milliseconds(),
			Time:       e.Time,
		}
	case events.OverflowEvent:
		return t.Overflow(e.Resource), "overflow", overflowMessage{
			PlanID:   e.PlanID,
			Sprint:   e.Sprint,
			Resource: e.Resource,
			Role:     e.Role.String(),
			Hours:    e.Hours,
			Capacity: e.Capacity,
		}
	case events.OptimizerEvent:
		return t.Optimizer(), "optimizer", optimizerMessage{
			Sprints:  e.Sprints,
			Score:    e.Score,
			Overflow: e.Overflow,
			Met:      e.Met,
		}
	}
	return "", "", nil
}
