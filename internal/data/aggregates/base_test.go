package aggregates

import (
	"context"
	"testing"
	"time"

	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
)

func TestExecuteWriteObservesStatus(t *testing.T) {
	cases := []struct {
		name string
		fn   func(dbctx.Context) error
		want string
	}{
		{"success", func(dbctx.Context) error { return nil }, "success"},
		{"invalid state", func(dbctx.Context) error {
			return invalidState("Tasks.Schedule.Submit", "Task is not unlocked yet", nil)
		}, string(domainagg.CodeInvalidState)},
		{"not found", func(dbctx.Context) error {
			return notFound("Tasks.Schedule.Submit", "Task not found")
		}, string(domainagg.CodeNotFound)},
		{"invariant", func(dbctx.Context) error { return invariantErr("broken") }, string(domainagg.CodeInvariantViolation)},
	}
	for _, tc := range cases {
		hooks := &spyHooks{}
		_ = executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, "Tasks.Test", tc.fn)
		if len(hooks.Operations) != 1 {
			t.Fatalf("%s: operations count: want=1 got=%d", tc.name, len(hooks.Operations))
		}
		if hooks.Operations[0].Status != tc.want {
			t.Fatalf("%s: status: want=%s got=%s", tc.name, tc.want, hooks.Operations[0].Status)
		}
	}
}

func TestExecuteWriteTracksConflictAndRetryCounters(t *testing.T) {
	hooks := &spyHooks{}
	_ = executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, "Tasks.Extension.Review", func(dbctx.Context) error {
		return conflictErr("request changed while reviewing")
	})
	_ = executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, "Tasks.Schedule.Unlock", func(dbctx.Context) error {
		return context.DeadlineExceeded
	})
	if len(hooks.Conflicts) != 1 || hooks.Conflicts[0] != "Tasks.Extension.Review" {
		t.Fatalf("conflict hooks: %+v", hooks.Conflicts)
	}
	if len(hooks.Retries) != 1 || hooks.Retries[0] != "Tasks.Schedule.Unlock" {
		t.Fatalf("retry hooks: %+v", hooks.Retries)
	}
}

func TestBaseDepsNowIsUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	d := BaseDeps{Now: func() time.Time { return time.Date(2025, 1, 6, 9, 0, 0, 0, ist) }}
	if got := d.now(); got.Location() != time.UTC || got.Hour() != 3 {
		t.Fatalf("now: want 03:30 UTC got=%v", got)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}

func (h *spyHooks) IncRetry(name string) {
	h.Retries = append(h.Retries, name)
}
