package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
)

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, domain string, weekNo int) *types.Task {
	tb.Helper()
	t := &types.Task{
		ID:          uuid.New(),
		Domain:      domain,
		WeekNo:      weekNo,
		Title:       "task",
		Description: "desc",
		Active:      true,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return t
}

func SeedSchedule(tb testing.TB, ctx context.Context, tx *gorm.DB, studentID, taskID uuid.UUID, unlock, deadline time.Time, unlocked bool) *types.TaskSchedule {
	tb.Helper()
	s := &types.TaskSchedule{
		ID:         uuid.New(),
		StudentID:  studentID,
		TaskID:     taskID,
		UnlockDate: unlock.UTC(),
		Deadline:   deadline.UTC(),
		IsUnlocked: unlocked,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed schedule: %v", err)
	}
	return s
}

func SeedSubmission(tb testing.TB, ctx context.Context, tx *gorm.DB, studentID, taskID uuid.UUID, status types.SubmissionStatus, score *int) *types.Submission {
	tb.Helper()
	s := &types.Submission{
		ID:                uuid.New(),
		StudentID:         studentID,
		TaskID:            taskID,
		SubmissionFileURL: "https://files.example/s.pdf",
		Status:            status,
		Score:             score,
		SubmittedAt:       time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed submission: %v", err)
	}
	return s
}

func SeedExtension(tb testing.TB, ctx context.Context, tx *gorm.DB, studentID, taskID uuid.UUID, days int) *types.ExtensionRequest {
	tb.Helper()
	e := &types.ExtensionRequest{
		ID:            uuid.New(),
		StudentID:     studentID,
		TaskID:        taskID,
		Reason:        "sick",
		RequestedDays: days,
		Status:        types.ExtensionPending,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed extension: %v", err)
	}
	return e
}

// Date is midnight UTC of the given civil day.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }

func PtrInt(v int) *int { return &v }
