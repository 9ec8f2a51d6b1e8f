package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

const DefaultReminderEveryDays = 3

type ReminderSummary struct {
	Scanned   int `json:"scanned"`
	Sent      int `json:"sent"`
	Throttled int `json:"throttled"`
	Failed    int `json:"failed"`
}

// ReminderScheduler emails students with overdue, unsubmitted tasks at most
// once every everyDays whole days per schedule. last_reminder_sent_at only
// moves on a successful send.
type ReminderScheduler interface {
	Run(ctx context.Context) (ReminderSummary, error)
}

type reminderScheduler struct {
	log       *logger.Logger
	schedules repos.ScheduleRepo
	notifier  StudentNotifier
	everyDays int
	now       func() time.Time
}

func NewReminderScheduler(
	baseLog *logger.Logger,
	scheduleRepo repos.ScheduleRepo,
	notifier StudentNotifier,
	everyDays int,
	now func() time.Time,
) ReminderScheduler {
	if now == nil {
		now = time.Now
	}
	if everyDays <= 0 {
		everyDays = DefaultReminderEveryDays
	}
	return &reminderScheduler{
		log:       baseLog.With("service", "ReminderScheduler"),
		schedules: scheduleRepo,
		notifier:  notifier,
		everyDays: everyDays,
		now:       now,
	}
}

func (s *reminderScheduler) Run(ctx context.Context) (ReminderSummary, error) {
	var sum ReminderSummary
	now := s.now().UTC()
	after := uuid.Nil
	dbc := dbctx.Context{Ctx: ctx}

	for {
		page, err := s.schedules.ListOverduePage(dbc, now, after, overduePageSize)
		if err != nil {
			return sum, err
		}
		for _, row := range page {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			sum.Scanned++
			after = row.ID

			if !row.ReminderDue(now, s.everyDays) {
				sum.Throttled++
				continue
			}
			if err := s.notifier.OverdueReminder(ctx, row, s.everyDays); err != nil {
				sum.Failed++
				s.log.Warn("Overdue reminder failed", "schedule_id", row.ID, "student_id", row.StudentID, "error", err)
				continue
			}
			if err := s.schedules.UpdateFields(dbc, row.ID, map[string]interface{}{
				"last_reminder_sent_at": now,
			}); err != nil {
				sum.Failed++
				s.log.Error("Reminder timestamp update failed", "schedule_id", row.ID, "error", err)
				continue
			}
			sum.Sent++
		}
		if len(page) < overduePageSize {
			break
		}
	}

	s.log.Info("Reminder run finished",
		"scanned", sum.Scanned,
		"sent", sum.Sent,
		"throttled", sum.Throttled,
		"failed", sum.Failed,
	)
	return sum, nil
}
