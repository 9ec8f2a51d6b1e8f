package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
)

var ScheduleAggregateContract = Contract{
	Name:             "Tasks.ScheduleAggregate",
	Owns:             "task_schedule",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns task_schedule state transitions and the submission row written with them.",
}

// ScheduleAggregate owns TaskSchedule transitions.
//
// Write failures return *Error with CodeValidation, CodeNotFound,
// CodeInvalidState, CodeRetryable or CodeInternal.
type ScheduleAggregate interface {
	Aggregate

	// Submit records a submission and advances the schedule to Submitted,
	// then unlocks the student's next-week schedules in the same domain.
	Submit(ctx context.Context, in SubmitInput) (SubmitResult, error)

	// UnlockNext unlocks the student's locked schedules for week+1 of domain.
	// Safe to re-run.
	UnlockNext(ctx context.Context, in UnlockNextInput) (UnlockNextResult, error)

	// Unlock unlocks one schedule when its prerequisite is met.
	Unlock(ctx context.Context, in UnlockInput) (UnlockResult, error)

	// MarkDelayed flags one overdue, unsubmitted schedule as delayed.
	MarkDelayed(ctx context.Context, in MarkDelayedInput) (MarkDelayedResult, error)

	// ForceOverdue moves a schedule into Delayed with a past window.
	ForceOverdue(ctx context.Context, in ForceOverdueInput) (*tasks.TaskSchedule, error)

	// WithdrawSubmission deletes a submission and reopens its schedule. The
	// deleted row is returned so callers can clean up the stored file.
	WithdrawSubmission(ctx context.Context, submissionID uuid.UUID) (*tasks.Submission, error)
}

type SubmitInput struct {
	StudentID         uuid.UUID
	TaskID            uuid.UUID
	SubmissionFileURL string
	SubmittedAt       time.Time
}

type SubmitResult struct {
	Submission *tasks.Submission
	Schedule   *tasks.TaskSchedule
	Task       *tasks.Task
	// UnlockedNext counts next-week schedules opened by this submission.
	UnlockedNext int64
}

type UnlockNextInput struct {
	StudentID uuid.UUID
	Domain    string
	WeekNo    int
}

type UnlockNextResult struct {
	Unlocked int64
}

type UnlockInput struct {
	ScheduleID uuid.UUID
}

type UnlockResult struct {
	Schedule *tasks.TaskSchedule
	// Changed is false when the schedule was already unlocked.
	Changed bool
	// Blocked is true when the prerequisite week is not yet submitted.
	Blocked bool
}

type MarkDelayedInput struct {
	ScheduleID uuid.UUID
	Now        time.Time
}

type MarkDelayedResult struct {
	Schedule *tasks.TaskSchedule
	Changed  bool
}

type ForceOverdueInput struct {
	StudentID uuid.UUID
	TaskID    uuid.UUID
	Now       time.Time
}
