package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/tasks", "200", time.Millisecond)
	m.ObserveJobRun("unlock", "succeeded", time.Second)
	m.IncNotification("task_unlocked", "sent")
	m.IncAggregateConflict("op")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil handler: want=503 got=%d", rec.Code)
	}
}

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("POST", "/api/tasks/submit", "201", 20*time.Millisecond)
	m.ObserveJobRun("reminder", "failed", time.Second)
	m.IncNotification("task_overdue_reminder", "failed")
	m.ObserveAggregateOperation("Tasks.Schedule.Submit", "success", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`skilledup_tasks_api_requests_total{method="POST",route="/api/tasks/submit",status="201"} 1`,
		`skilledup_tasks_job_runs_total{job="reminder",status="failed"} 1`,
		`skilledup_tasks_notifications_total{kind="task_overdue_reminder",status="failed"} 1`,
		`skilledup_tasks_aggregate_operations_total{op="Tasks.Schedule.Submit",status="success"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("exposition missing %q", want)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	h := ParseHeaders(" api-key = abc ,bad, x=")
	if len(h) != 1 || h["api-key"] != "abc" {
		t.Fatalf("headers: got=%v", h)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("empty: want nil")
	}
}

func TestInitOTelDisabledIsNoop(t *testing.T) {
	shutdown := InitOTel(context.Background(), nil, OtelConfig{Enabled: false})
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: want=nil got=%v", err)
	}
}

func TestOtelConfigDefaults(t *testing.T) {
	if got := (OtelConfig{ServiceName: "  "}).service(); got != defaultServiceName {
		t.Fatalf("service: want=%s got=%s", defaultServiceName, got)
	}
	if got := (OtelConfig{SampleRatio: 7}).sampler().Description(); !strings.Contains(got, "root:AlwaysOnSampler") {
		t.Fatalf("sampler: want ratio clamped to 1 got=%s", got)
	}
}
