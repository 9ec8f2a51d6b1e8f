package tasks

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskSchedule is the per-(student, task) instance of a Task.
//
// The lifecycle is a small state machine (see State). It is persisted as
// three boolean columns so the table stays queryable with plain predicates;
// mutate it only through the transition methods below.
type TaskSchedule struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_task_schedule_student_task,priority:1" json:"studentId"`
	TaskID             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_task_schedule_student_task,priority:2;index" json:"taskId"`
	Task               *Task      `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"task,omitempty"`
	UnlockDate         time.Time  `gorm:"column:unlock_date;not null;index" json:"unlockDate"`
	Deadline           time.Time  `gorm:"column:deadline;not null;index" json:"deadline"`
	IsUnlocked         bool       `gorm:"column:is_unlocked;not null;index" json:"isUnlocked"`
	IsSubmitted        bool       `gorm:"column:is_submitted;not null;index" json:"isSubmitted"`
	IsDelayed          bool       `gorm:"column:is_delayed;not null;index" json:"isDelayed"`
	LastReminderSentAt *time.Time `gorm:"column:last_reminder_sent_at" json:"lastReminderSentAt,omitempty"`
	CreatedAt          time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updatedAt"`
}

func (TaskSchedule) TableName() string { return "task_schedule" }

func (s *TaskSchedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type State string

const (
	StateLocked    State = "LOCKED"
	StateUnlocked  State = "UNLOCKED"
	StateDelayed   State = "DELAYED"
	StateSubmitted State = "SUBMITTED"
)

var (
	ErrNotUnlocked       = errors.New("Task is not unlocked yet")
	ErrAlreadySubmitted  = errors.New("Task already submitted")
	ErrInvalidTransition = errors.New("invalid schedule transition")
)

// State folds the persisted flags into a single tag. A submitted schedule is
// Submitted regardless of IsDelayed, which is kept as history.
func (s *TaskSchedule) State() State {
	switch {
	case s.IsSubmitted:
		return StateSubmitted
	case !s.IsUnlocked:
		return StateLocked
	case s.IsDelayed:
		return StateDelayed
	default:
		return StateUnlocked
	}
}

// Unlock moves Locked -> Unlocked. It reports whether anything changed so
// repeated unlocks are no-ops.
func (s *TaskSchedule) Unlock() bool {
	if s.State() != StateLocked {
		return false
	}
	s.IsUnlocked = true
	return true
}

// MarkDelayed moves Unlocked -> Delayed once now is past the deadline.
func (s *TaskSchedule) MarkDelayed(now time.Time) error {
	if s.State() != StateUnlocked {
		return fmt.Errorf("%w: mark delayed from %s", ErrInvalidTransition, s.State())
	}
	if !now.After(s.Deadline) {
		return fmt.Errorf("%w: deadline %s not passed", ErrInvalidTransition, s.Deadline.Format(time.RFC3339))
	}
	s.IsDelayed = true
	return nil
}

// Submit moves Unlocked|Delayed -> Submitted. IsDelayed is left as is, so a
// late submission stays flagged.
func (s *TaskSchedule) Submit() error {
	switch s.State() {
	case StateLocked:
		return ErrNotUnlocked
	case StateSubmitted:
		return ErrAlreadySubmitted
	}
	s.IsSubmitted = true
	return nil
}

// Reopen undoes Submit after the submission row was removed.
func (s *TaskSchedule) Reopen() bool {
	if !s.IsSubmitted {
		return false
	}
	s.IsSubmitted = false
	return true
}

// ExtendDeadline pushes the deadline by days calendar days in loc. A Delayed
// schedule returns to Unlocked when the new deadline is after now.
func (s *TaskSchedule) ExtendDeadline(days int, now time.Time, loc *time.Location) error {
	if days <= 0 {
		return fmt.Errorf("%w: extension days must be positive", ErrInvalidTransition)
	}
	if loc == nil {
		loc = time.UTC
	}
	s.Deadline = s.Deadline.In(loc).AddDate(0, 0, days).UTC()
	if s.Deadline.After(now) {
		s.IsDelayed = false
	}
	return nil
}

// ForceOverdue puts the schedule into Delayed with the given past window.
// Used by the simulate-delay ops endpoint.
func (s *TaskSchedule) ForceOverdue(unlockDate, deadline time.Time) {
	s.UnlockDate = unlockDate
	s.Deadline = deadline
	s.IsUnlocked = true
	s.IsSubmitted = false
	s.IsDelayed = true
}

// ReminderDue reports whether an overdue reminder may go out at now: the
// first one immediately, then once every `every` whole days.
func (s *TaskSchedule) ReminderDue(now time.Time, every int) bool {
	if s.LastReminderSentAt == nil {
		return true
	}
	if every <= 0 {
		every = 1
	}
	elapsedDays := int(now.Sub(*s.LastReminderSentAt) / (24 * time.Hour))
	return elapsedDays >= every
}
