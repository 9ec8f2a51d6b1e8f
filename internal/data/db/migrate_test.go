package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
)

func TestWithForeignKeys(t *testing.T) {
	cases := map[string]string{
		"tasks.db":                   "tasks.db?_foreign_keys=1",
		"file::memory:?cache=shared": "file::memory:?cache=shared&_foreign_keys=1",
		"tasks.db?_foreign_keys=0":   "tasks.db?_foreign_keys=0",
		"file:x?mode=memory&_fk=1":   "file:x?mode=memory&_fk=1",
	}
	for in, want := range cases {
		if got := withForeignKeys(in); got != want {
			t.Fatalf("withForeignKeys(%q): want=%q got=%q", in, want, got)
		}
	}
}

func TestAutoMigrateAll_TaskForeignKeys(t *testing.T) {
	path := fmt.Sprintf("file:fk_%s?mode=memory&cache=shared", uuid.NewString()[:8])
	gdb, err := NewSQLite(nil, path)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := AutoMigrateAll(gdb); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}

	var enabled int
	if err := gdb.Raw("PRAGMA foreign_keys").Scan(&enabled).Error; err != nil || enabled != 1 {
		t.Fatalf("foreign_keys pragma: want=1 got=%d err=%v", enabled, err)
	}

	task := &types.Task{ID: uuid.New(), Domain: "web", WeekNo: 1, Title: "T", Active: true}
	if err := gdb.Create(task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}
	unlock := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	sched := &types.TaskSchedule{StudentID: uuid.New(), TaskID: task.ID, UnlockDate: unlock, Deadline: unlock.Add(7 * 24 * time.Hour)}
	if err := gdb.Create(sched).Error; err != nil {
		t.Fatalf("create schedule: %v", err)
	}

	orphanSched := &types.TaskSchedule{StudentID: uuid.New(), TaskID: uuid.New(), UnlockDate: unlock, Deadline: unlock.Add(7 * 24 * time.Hour)}
	if err := gdb.Create(orphanSched).Error; err == nil {
		t.Fatalf("schedule for a missing task must be rejected")
	}
	orphanSub := &types.Submission{StudentID: uuid.New(), TaskID: uuid.New(), Status: types.SubmissionPending, SubmittedAt: unlock}
	if err := gdb.Create(orphanSub).Error; err == nil {
		t.Fatalf("submission for a missing task must be rejected")
	}

	if err := gdb.Where("id = ?", task.ID).Delete(&types.Task{}).Error; err != nil {
		t.Fatalf("delete task: %v", err)
	}
	var left int64
	if err := gdb.Model(&types.TaskSchedule{}).Where("task_id = ?", task.ID).Count(&left).Error; err != nil || left != 0 {
		t.Fatalf("schedules after task delete: want=0 got=%d err=%v", left, err)
	}
}
