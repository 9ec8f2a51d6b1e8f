package aggregates

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domainagg.ErrorCode
	}{
		{"validation", validationErr("bad input"), domainagg.CodeValidation},
		{"conflict", conflictErr("stale"), domainagg.CodeConflict},
		{"not found", gorm.ErrRecordNotFound, domainagg.CodeNotFound},
		{"sqlite unique", errors.New("UNIQUE constraint failed: task_schedule.student_id, task_schedule.task_id"), domainagg.CodeConflict},
		{"sqlite busy", errors.New("database is locked"), domainagg.CodeRetryable},
		{"unknown", errors.New("boom"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		got := MapError("Tasks.Test", tc.err)
		if !domainagg.IsCode(got, tc.want) {
			t.Fatalf("%s: want=%s got=%q (%v)", tc.name, tc.want, domainagg.CodeOf(got), got)
		}
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := invalidState("Tasks.Schedule.Submit", "Task already submitted", nil)
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
	if got := domainagg.MessageOf(out); got != "Task already submitted" {
		t.Fatalf("message: want=%q got=%q", "Task already submitted", got)
	}
}

func TestMapError_PostgresCodes(t *testing.T) {
	cases := map[string]domainagg.ErrorCode{
		"23505": domainagg.CodeConflict,
		"23503": domainagg.CodePreconditionFailed,
		"40P01": domainagg.CodeRetryable,
		"22001": domainagg.CodeInternal,
	}
	for sqlState, want := range cases {
		got := MapError("Tasks.Test", &pgconn.PgError{Code: sqlState, Message: "pg"})
		if !domainagg.IsCode(got, want) {
			t.Fatalf("%s: want=%s got=%s", sqlState, want, domainagg.CodeOf(got))
		}
	}
}
