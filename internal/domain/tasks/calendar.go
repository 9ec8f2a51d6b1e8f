package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Calendar maps instants onto the civil dates the weekly plan is built on.
// Dates are represented as midnight UTC of the civil day so they compare and
// persist the same way regardless of the configured zone.
type Calendar struct {
	Loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{Loc: loc}
}

func (c Calendar) loc() *time.Location {
	if c.Loc == nil {
		return time.UTC
	}
	return c.Loc
}

// Date returns the civil date of t in the calendar's zone.
func (c Calendar) Date(t time.Time) time.Time {
	l := t.In(c.loc())
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns 23:59:59 of date in the calendar's zone, as a UTC instant.
func (c Calendar) EndOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, c.loc()).UTC()
}

// WeekDeadline is the end of the sixth day after unlock (the following Sunday
// for a Monday unlock).
func (c Calendar) WeekDeadline(unlock time.Time) time.Time {
	return c.EndOfDay(unlock.AddDate(0, 0, 6))
}

// Week1 is today when today is a Monday, otherwise the next Monday.
func Week1(today time.Time) time.Time {
	offset := (int(time.Monday) - int(today.Weekday()) + 7) % 7
	return today.AddDate(0, 0, offset)
}

// Plan computes the initial schedule of task for a student enrolled at now.
//
// Automatic tasks unlock (weekNo-1) weeks after Week1 and only week 1 may
// start unlocked. Manual tasks use the admin-set window (start date read in
// UTC, falling back to today) and start unlocked once the start date is
// reached.
func (c Calendar) Plan(task *Task, studentID uuid.UUID, now time.Time) *TaskSchedule {
	today := c.Date(now)

	var unlock, deadline time.Time
	if task.IsManual {
		unlock = today
		if task.StartDate != nil {
			unlock = NewCalendar(time.UTC).Date(*task.StartDate)
		}
		if task.Deadline != nil {
			deadline = task.Deadline.UTC()
		} else {
			deadline = c.WeekDeadline(unlock)
		}
	} else {
		unlock = Week1(today).AddDate(0, 0, 7*(task.WeekNo-1))
		deadline = c.WeekDeadline(unlock)
	}

	reached := !unlock.After(today)
	return &TaskSchedule{
		ID:         uuid.New(),
		StudentID:  studentID,
		TaskID:     task.ID,
		UnlockDate: unlock,
		Deadline:   deadline,
		IsUnlocked: reached && (task.IsManual || task.WeekNo == 1),
	}
}

// OverdueWindow returns the past window used to force a schedule overdue:
// unlocked eight days ago with the usual week-long deadline.
func (c Calendar) OverdueWindow(now time.Time) (unlock, deadline time.Time) {
	unlock = c.Date(now).AddDate(0, 0, -8)
	return unlock, c.WeekDeadline(unlock)
}
