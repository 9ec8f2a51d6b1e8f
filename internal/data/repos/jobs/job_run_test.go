package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos/testutil"
	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
)

func TestJobRunRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewJobRunRepo(db, testutil.Logger(t))

	now := time.Now().UTC()

	queued := &types.JobRun{
		ID:         uuid.New(),
		JobType:    "task_created",
		EntityType: "task",
		EntityID:   testutil.PtrUUID(uuid.New()),
		Status:     types.JobStatusQueued,
		Payload:    datatypes.JSON([]byte("{}")),
		Result:     datatypes.JSON([]byte("{}")),
		CreatedAt:  now.Add(-3 * time.Hour),
		UpdatedAt:  now.Add(-3 * time.Hour),
	}
	failed := &types.JobRun{
		ID:          uuid.New(),
		JobType:     "task_created",
		EntityType:  "task",
		EntityID:    testutil.PtrUUID(uuid.New()),
		Status:      types.JobStatusFailed,
		LastErrorAt: testutil.PtrTime(now.Add(-2 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-2 * time.Hour),
		UpdatedAt:   now.Add(-2 * time.Hour),
	}
	staleRunning := &types.JobRun{
		ID:          uuid.New(),
		JobType:     "task_created",
		EntityType:  "task",
		EntityID:    testutil.PtrUUID(uuid.New()),
		Status:      types.JobStatusRunning,
		HeartbeatAt: testutil.PtrTime(now.Add(-10 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-1 * time.Hour),
		UpdatedAt:   now.Add(-1 * time.Hour),
	}
	exhausted := &types.JobRun{
		ID:          uuid.New(),
		JobType:     "task_created",
		Status:      types.JobStatusFailed,
		Attempts:    3,
		LastErrorAt: testutil.PtrTime(now.Add(-5 * time.Hour)),
		Payload:     datatypes.JSON([]byte("{}")),
		Result:      datatypes.JSON([]byte("{}")),
		CreatedAt:   now.Add(-4 * time.Hour),
		UpdatedAt:   now.Add(-4 * time.Hour),
	}

	created, err := repo.Create(dbc, []*types.JobRun{queued, failed, staleRunning, exhausted})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 4 {
		t.Fatalf("Create: want=4 got=%d", len(created))
	}

	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{queued.ID, failed.ID, staleRunning.ID}); err != nil || len(rows) != 3 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}

	// Claims walk the runnable set in created_at order and skip exhausted jobs.
	for i, want := range []uuid.UUID{queued.ID, failed.ID, staleRunning.ID} {
		got, err := repo.ClaimNextRunnable(dbc, 3, time.Hour, time.Hour)
		if err != nil {
			t.Fatalf("ClaimNextRunnable #%d: %v", i+1, err)
		}
		if got == nil || got.ID != want {
			t.Fatalf("ClaimNextRunnable #%d: want=%v got=%v", i+1, want, got)
		}
		if got.Status != types.JobStatusRunning {
			t.Fatalf("ClaimNextRunnable #%d status: want=running got=%s", i+1, got.Status)
		}
	}
	if got, err := repo.ClaimNextRunnable(dbc, 3, time.Hour, time.Hour); err != nil || got != nil {
		t.Fatalf("ClaimNextRunnable #4: want nil got=%v err=%v", got, err)
	}

	if err := repo.UpdateFields(dbc, queued.ID, map[string]interface{}{"status": types.JobStatusSucceeded}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if err := repo.Heartbeat(dbc, failed.ID); err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}

	exists, err := repo.ExistsRunnable(dbc, "task_created", "task", failed.EntityID)
	if err != nil || !exists {
		t.Fatalf("ExistsRunnable(running): want=true got=%v err=%v", exists, err)
	}
	exists, err = repo.ExistsRunnable(dbc, "task_created", "task", queued.EntityID)
	if err != nil || exists {
		t.Fatalf("ExistsRunnable(succeeded): want=false got=%v err=%v", exists, err)
	}
}
