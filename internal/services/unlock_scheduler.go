package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

type UnlockStrategy string

const (
	// UnlockExact only considers schedules whose unlock date is today. A
	// schedule blocked on its unlock day stays locked until the student
	// submits the previous week.
	UnlockExact UnlockStrategy = "exact"
	// UnlockCatchUp re-evaluates every locked schedule whose unlock date has
	// been reached.
	UnlockCatchUp UnlockStrategy = "catch_up"
)

func ParseUnlockStrategy(s string) (UnlockStrategy, error) {
	switch UnlockStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnlockExact:
		return UnlockExact, nil
	case UnlockCatchUp:
		return UnlockCatchUp, nil
	}
	return "", fmt.Errorf("unknown unlock strategy %q", s)
}

type UnlockSummary struct {
	Scanned  int `json:"scanned"`
	Unlocked int `json:"unlocked"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

type UnlockScheduler interface {
	Run(ctx context.Context) (UnlockSummary, error)
}

type unlockScheduler struct {
	log       *logger.Logger
	schedules repos.ScheduleRepo
	agg       domainagg.ScheduleAggregate
	notifier  StudentNotifier
	cal       tasks.Calendar
	strategy  UnlockStrategy
	now       func() time.Time
}

func NewUnlockScheduler(
	baseLog *logger.Logger,
	scheduleRepo repos.ScheduleRepo,
	agg domainagg.ScheduleAggregate,
	notifier StudentNotifier,
	cal tasks.Calendar,
	strategy UnlockStrategy,
	now func() time.Time,
) UnlockScheduler {
	if now == nil {
		now = time.Now
	}
	if strategy == "" {
		strategy = UnlockExact
	}
	return &unlockScheduler{
		log:       baseLog.With("service", "UnlockScheduler"),
		schedules: scheduleRepo,
		agg:       agg,
		notifier:  notifier,
		cal:       tasks.NewCalendar(cal.Loc),
		strategy:  strategy,
		now:       now,
	}
}

func (s *unlockScheduler) Run(ctx context.Context) (UnlockSummary, error) {
	var sum UnlockSummary
	today := s.cal.Date(s.now())

	due, err := s.schedules.ListDueForUnlock(dbctx.Context{Ctx: ctx}, today, s.strategy == UnlockCatchUp)
	if err != nil {
		return sum, err
	}
	s.log.Info("Unlock run started", "today", today.Format("2006-01-02"), "strategy", s.strategy, "due", len(due))

	for _, row := range due {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Scanned++

		res, err := s.agg.Unlock(ctx, domainagg.UnlockInput{ScheduleID: row.ID})
		if err != nil {
			sum.Failed++
			s.log.Error("Unlock failed", "schedule_id", row.ID, "error", err)
			continue
		}
		if res.Blocked || !res.Changed {
			sum.Skipped++
			if res.Blocked {
				s.log.Debug("Unlock blocked on previous week", "schedule_id", row.ID, "student_id", row.StudentID)
			}
			continue
		}
		sum.Unlocked++
		if s.notifier != nil {
			if err := s.notifier.TaskUnlocked(ctx, res.Schedule); err != nil {
				s.log.Warn("Unlock email failed", "schedule_id", row.ID, "error", err)
			}
		}
	}

	s.log.Info("Unlock run finished",
		"scanned", sum.Scanned,
		"unlocked", sum.Unlocked,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
	)
	return sum, nil
}
