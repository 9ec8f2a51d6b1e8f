package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos/testutil"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
)

func TestGuardSchedule(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	task := testutil.SeedTask(t, ctx, db, "web", 1)
	sched := &tasks.TaskSchedule{ID: uuid.New(), StudentID: uuid.New(), TaskID: task.ID, IsUnlocked: true}
	if err := db.Create(sched).Error; err != nil {
		t.Fatalf("seed schedule: %v", err)
	}
	g := NewGuard(db)
	dbc := dbctx.Context{Ctx: ctx}
	submit := map[string]any{"is_submitted": true, "updated_at": time.Now().UTC()}

	ok, err := g.Schedule(dbc, sched.ID, ScheduleState{Unlocked: is(true), Submitted: is(false)}, submit)
	if err != nil || !ok {
		t.Fatalf("first submit: want=true got=%v err=%v", ok, err)
	}
	ok, err = g.Schedule(dbc, sched.ID, ScheduleState{Unlocked: is(true), Submitted: is(false)}, submit)
	if err != nil || ok {
		t.Fatalf("second submit: want=false got=%v err=%v", ok, err)
	}
	if _, err := g.Schedule(dbc, uuid.Nil, ScheduleState{}, submit); !domainagg.IsCode(MapError("op", err), domainagg.CodeValidation) {
		t.Fatalf("nil id: want validation got=%v", err)
	}
	if _, err := g.Schedule(dbc, sched.ID, ScheduleState{}, nil); !domainagg.IsCode(MapError("op", err), domainagg.CodeInvariantViolation) {
		t.Fatalf("empty set: want invariant got=%v", err)
	}
}

func TestGormTxRunnerRetriesBusyDatabase(t *testing.T) {
	runner := &gormTxRunner{db: testutil.DB(t), attempts: 3, backoff: time.Millisecond}
	calls := 0
	err := runner.InTx(context.Background(), func(dbctx.Context) error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("busy retries: want calls=3 err=nil got calls=%d err=%v", calls, err)
	}

	calls = 0
	_ = runner.InTx(context.Background(), func(dbctx.Context) error {
		calls++
		return invalidState("Tasks.Schedule.Submit", "Task already submitted", nil)
	})
	if calls != 1 {
		t.Fatalf("aggregate errors are final: want calls=1 got=%d", calls)
	}
}
