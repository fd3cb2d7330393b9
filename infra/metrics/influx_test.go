package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/sprintplan/core/metrics"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (b *bodyRecorder) get() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bodies...)
}

func line(p *write.Point) string {
	return strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
}

func TestInfluxSink_RecordPlan(t *testing.T) {
	var rec bodyRecorder
	sink := NewInfluxSink(rec.server(t).URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()

	err := sink.RecordPlan(coremetrics.PlanRecord{
		PlanID: "p1", Source: "demo", Sprints: 4, Blocks: 12, Entries: 14,
		Score: 0.91234, Completion: 1, Health: 0.8, Cost: 1200,
		Overflow: 1, Transfers: 2, Duration: 1500 * time.Microsecond, Time: now,
	})
	if err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("plan_summary").
		AddTag("plan_id", "p1").
		AddTag("source", "demo").
		AddField("sprints", 4).
		AddField("blocks", 12).
		AddField("entries", 14).
		AddField("score", 0.912).
		AddField("completion", 1.0).
		AddField("cost_delta", 0.0).
		AddField("health", 0.8).
		AddField("cost", 1200.0).
		AddField("overflow", 1).
		AddField("unassigned", 0).
		AddField("transfers", 2).
		AddField("duration_ms", 1.5).
		SetTime(now)
	bodies := rec.get()
	if len(bodies) != 1 || bodies[0] != line(p) {
		t.Errorf("unexpected bodies: %#v", bodies)
	}
}

func TestInfluxSink_RecordUtilizationBatches(t *testing.T) {
	var rec bodyRecorder
	sink := NewInfluxSink(rec.server(t).URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()

	recs := []coremetrics.UtilizationRecord{
		{PlanID: "p1", Sprint: 0, Resource: "D1", Role: "Dev", Hours: 30, Capacity: 64, Time: now},
		{PlanID: "p1", Sprint: 0, Resource: "D2", Role: "Dev", Hours: 20, Capacity: 64, Time: now},
	}
	if err := sink.RecordUtilization(recs); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := sink.RecordUtilization(nil); err != nil {
		t.Fatalf("empty record: %v", err)
	}
	var lines []string
	for _, r := range recs {
		lines = append(lines, line(write.NewPointWithMeasurement("resource_utilization").
			AddTag("plan_id", r.PlanID).
			AddTag("resource", r.Resource).
			AddTag("role", r.Role).
			AddTag("sprint", "0").
			AddField("hours", r.Hours).
			AddField("capacity", r.Capacity).
			SetTime(now)))
	}
	bodies := rec.get()
	if len(bodies) != 1 || bodies[0] != strings.Join(lines, "\n") {
		t.Errorf("unexpected bodies: %#v", bodies)
	}
}

func TestInfluxSink_RecordOverflowAndStep(t *testing.T) {
	var rec bodyRecorder
	sink := NewInfluxSink(rec.server(t).URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()

	if err := sink.RecordOverflow(coremetrics.OverflowRecord{PlanID: "p1", Sprint: 2, Resource: "Q1", Role: "QA", Hours: 70, Capacity: 64, Time: now}); err != nil {
		t.Fatalf("overflow: %v", err)
	}
	if err := sink.RecordOptimizerStep(coremetrics.OptimizerStep{Sprints: 5, Score: 0.95, Met: true, Time: now}); err != nil {
		t.Fatalf("step: %v", err)
	}
	p1 := write.NewPointWithMeasurement("resource_overflow").
		AddTag("plan_id", "p1").
		AddTag("resource", "Q1").
		AddTag("role", "QA").
		AddTag("sprint", "2").
		AddField("hours", 70.0).
		AddField("capacity", 64.0).
		SetTime(now)
	p2 := write.NewPointWithMeasurement("optimizer_step").
		AddTag("met", "true").
		AddField("sprints", 5).
		AddField("score", 0.95).
		AddField("overflow", 0).
		SetTime(now)
	bodies := rec.get()
	if len(bodies) != 2 || bodies[0] != line(p1) || bodies[1] != line(p2) {
		t.Errorf("unexpected bodies: %#v", bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
