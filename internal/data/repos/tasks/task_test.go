package tasks

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos/testutil"
	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
)

func TestTaskRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewTaskRepo(db, testutil.Logger(t))

	w1, err := repo.Create(dbc, &types.Task{Domain: "web", WeekNo: 1, Title: "HTML", Active: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if w1.ID == uuid.Nil {
		t.Fatalf("Create: id not assigned")
	}
	inactive := testutil.SeedTask(t, ctx, tx, "web", 2)
	if err := repo.UpdateFields(dbc, inactive.ID, map[string]interface{}{"active": false}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	testutil.SeedTask(t, ctx, tx, "data", 1)

	active, err := repo.ListActiveByDomain(dbc, "web")
	if err != nil || len(active) != 1 || active[0].ID != w1.ID {
		t.Fatalf("ListActiveByDomain: want=[%s] got=%d err=%v", w1.ID, len(active), err)
	}
	week, err := repo.ListActiveByDomainWeek(dbc, "web", 2)
	if err != nil || len(week) != 0 {
		t.Fatalf("ListActiveByDomainWeek: want=0 got=%d err=%v", len(week), err)
	}
	all, err := repo.List(dbc)
	if err != nil || len(all) != 3 {
		t.Fatalf("List: want=3 got=%d err=%v", len(all), err)
	}

	student := uuid.New()
	d := testutil.Date(2025, 1, 6)
	testutil.SeedSchedule(t, ctx, tx, student, w1.ID, d, d, true)
	testutil.SeedSubmission(t, ctx, tx, student, w1.ID, types.SubmissionPending, nil)
	testutil.SeedExtension(t, ctx, tx, student, w1.ID, 3)

	if err := repo.DeleteCascade(dbc, w1.ID); err != nil {
		t.Fatalf("DeleteCascade: %v", err)
	}
	if got, err := repo.GetByID(dbc, w1.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: want nil got=%v err=%v", got, err)
	}
	for name, model := range map[string]interface{}{
		"schedules":   &types.TaskSchedule{},
		"submissions": &types.Submission{},
		"extensions":  &types.ExtensionRequest{},
	} {
		var count int64
		if err := tx.Model(model).Where("task_id = ?", w1.ID).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if count != 0 {
			t.Fatalf("%s after cascade: want=0 got=%d", name, count)
		}
	}
}
