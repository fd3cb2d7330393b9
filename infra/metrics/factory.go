package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/sprintplan/core/factory"
	coremetrics "github.com/kilianp07/sprintplan/core/metrics"
)

// init registers built-in plan sinks.
func init() {
	_ = coremetrics.RegisterPlanSink("nop", func(map[string]any) (coremetrics.PlanSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterPlanSink("prometheus", func(map[string]any) (coremetrics.PlanSink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterPlanSink("influx", func(conf map[string]any) (coremetrics.PlanSink, error) {
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

	_ = coremetrics.RegisterPlanSink("webhook", func(conf map[string]any) (coremetrics.PlanSink, error) {
		var c WebhookConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewWebhookSink(c)
	})
}
