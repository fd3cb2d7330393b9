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

	coremetrics "github.com/kilianp07/sprintplan/core/metrics"
	"github.com/kilianp07/sprintplan/infra/logger"
)

// InfluxSink writes plan summaries to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
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

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.PlanSink {
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

// RecordPlan writes one plan_summary point.
func (s *InfluxSink) RecordPlan(rec coremetrics.PlanRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_summary").
		AddTag("plan_id", rec.PlanID).
		AddTag("source", source(rec.Source)).
		AddField("sprints", rec.Sprints).
		AddField("blocks", rec.Blocks).
		AddField("entries", rec.Entries).
		AddField("score", round3(rec.Score)).
		AddField("completion", round3(rec.Completion)).
		AddField("cost_delta", round3(rec.CostDelta)).
		AddField("health", round3(rec.Health)).
		AddField("cost", round3(rec.Cost)).
		AddField("overflow", rec.Overflow).
		AddField("unassigned", rec.Unassigned).
		AddField("transfers", rec.Transfers).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordUtilization writes one resource_utilization point per resource and sprint.
func (s *InfluxSink) RecordUtilization(recs []coremetrics.UtilizationRecord) error {
	if len(recs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, len(recs))
	for _, r := range recs {
		points = append(points, write.NewPointWithMeasurement("resource_utilization").
			AddTag("plan_id", r.PlanID).
			AddTag("resource", r.Resource).
			AddTag("role", r.Role).
			AddTag("sprint", strconv.Itoa(r.Sprint)).
			AddField("hours", round3(r.Hours)).
			AddField("capacity", round3(r.Capacity)).
			SetTime(r.Time))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordOverflow writes an overflow point.
func (s *InfluxSink) RecordOverflow(rec coremetrics.OverflowRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("resource_overflow").
		AddTag("plan_id", rec.PlanID).
		AddTag("resource", rec.Resource).
		AddTag("role", rec.Role).
		AddTag("sprint", strconv.Itoa(rec.Sprint)).
		AddField("hours", round3(rec.Hours)).
		AddField("capacity", round3(rec.Capacity)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordOptimizerStep writes an optimizer_step point.
func (s *InfluxSink) RecordOptimizerStep(step coremetrics.OptimizerStep) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("optimizer_step").
		AddTag("met", strconv.FormatBool(step.Met)).
		AddField("sprints", step.Sprints).
		AddField("score", round3(step.Score)).
		AddField("overflow", step.Overflow).
		SetTime(step.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
