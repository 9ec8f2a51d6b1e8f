package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

const overduePageSize = 100

type DeadlineSummary struct {
	Scanned int `json:"scanned"`
	Delayed int `json:"delayed"`
	Failed  int `json:"failed"`
}

// DeadlineMonitor flags unlocked, unsubmitted schedules whose deadline has
// passed.
type DeadlineMonitor interface {
	Run(ctx context.Context) (DeadlineSummary, error)
}

type deadlineMonitor struct {
	log       *logger.Logger
	schedules repos.ScheduleRepo
	agg       domainagg.ScheduleAggregate
	notifier  StudentNotifier
	now       func() time.Time
}

func NewDeadlineMonitor(
	baseLog *logger.Logger,
	scheduleRepo repos.ScheduleRepo,
	agg domainagg.ScheduleAggregate,
	notifier StudentNotifier,
	now func() time.Time,
) DeadlineMonitor {
	if now == nil {
		now = time.Now
	}
	return &deadlineMonitor{
		log:       baseLog.With("service", "DeadlineMonitor"),
		schedules: scheduleRepo,
		agg:       agg,
		notifier:  notifier,
		now:       now,
	}
}

func (s *deadlineMonitor) Run(ctx context.Context) (DeadlineSummary, error) {
	var sum DeadlineSummary
	now := s.now().UTC()
	after := uuid.Nil

	for {
		page, err := s.schedules.ListOverdueUndelayedPage(dbctx.Context{Ctx: ctx}, now, after, overduePageSize)
		if err != nil {
			return sum, err
		}
		for _, row := range page {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			sum.Scanned++
			after = row.ID

			res, err := s.agg.MarkDelayed(ctx, domainagg.MarkDelayedInput{ScheduleID: row.ID, Now: now})
			if err != nil {
				sum.Failed++
				s.log.Error("Mark delayed failed", "schedule_id", row.ID, "error", err)
				continue
			}
			if !res.Changed {
				continue
			}
			sum.Delayed++
			if s.notifier != nil {
				if err := s.notifier.TaskDelayed(ctx, res.Schedule); err != nil {
					s.log.Warn("Deadline email failed", "schedule_id", row.ID, "error", err)
				}
			}
		}
		if len(page) < overduePageSize {
			break
		}
	}

	s.log.Info("Deadline check finished", "scanned", sum.Scanned, "delayed", sum.Delayed, "failed", sum.Failed)
	return sum, nil
}
