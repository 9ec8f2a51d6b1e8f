package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos"
	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

// MinimumCompletionPercent is the completion needed for certificate and
// recommendation eligibility.
const MinimumCompletionPercent = 95

type CompletionStats struct {
	TotalTasks              int  `json:"totalTasks"`
	CompletedTasks          int  `json:"completedTasks"`
	CompletionPercent       int  `json:"completionPercent"`
	MeetsMinimumRequirement bool `json:"meetsMinimumRequirement"`
}

// ComputeCompletion floors completed*100/total.
func ComputeCompletion(total, completed int) CompletionStats {
	pct := 0
	if total > 0 {
		pct = completed * 100 / total
	}
	return CompletionStats{
		TotalTasks:              total,
		CompletedTasks:          completed,
		CompletionPercent:       pct,
		MeetsMinimumRequirement: pct >= MinimumCompletionPercent,
	}
}

type ScheduleEngine interface {
	// InitializeSchedules creates the student's missing schedules for every
	// active task of domain and returns how many were created.
	InitializeSchedules(ctx context.Context, studentID uuid.UUID, domain string) (int, error)
	MySchedules(ctx context.Context, studentID uuid.UUID) ([]*types.TaskSchedule, error)
	CompletionStats(ctx context.Context, studentID uuid.UUID, domain string) (CompletionStats, error)
	// SimulateDelay forces a schedule into an overdue, delayed state.
	SimulateDelay(ctx context.Context, studentID, taskID uuid.UUID) (*types.TaskSchedule, error)
}

type scheduleEngine struct {
	db        *gorm.DB
	log       *logger.Logger
	tasks     repos.TaskRepo
	schedules repos.ScheduleRepo
	agg       domainagg.ScheduleAggregate
	catalog   TaskCatalog
	cal       tasks.Calendar
	now       func() time.Time
}

func NewScheduleEngine(
	db *gorm.DB,
	baseLog *logger.Logger,
	taskRepo repos.TaskRepo,
	scheduleRepo repos.ScheduleRepo,
	agg domainagg.ScheduleAggregate,
	catalog TaskCatalog,
	cal tasks.Calendar,
	now func() time.Time,
) ScheduleEngine {
	if now == nil {
		now = time.Now
	}
	return &scheduleEngine{
		db:        db,
		log:       baseLog.With("service", "ScheduleEngine"),
		tasks:     taskRepo,
		schedules: scheduleRepo,
		agg:       agg,
		catalog:   catalog,
		cal:       tasks.NewCalendar(cal.Loc),
		now:       now,
	}
}

func (s *scheduleEngine) InitializeSchedules(ctx context.Context, studentID uuid.UUID, domain string) (int, error) {
	const op = "Tasks.ScheduleEngine.InitializeSchedules"
	domain = strings.TrimSpace(domain)
	if studentID == uuid.Nil || domain == "" {
		return 0, validation(op, "studentId and domain are required")
	}
	dbc := dbctx.Context{Ctx: ctx}

	active, err := s.tasks.ListActiveByDomain(dbc, domain)
	if err != nil {
		return 0, err
	}
	if len(active) == 0 {
		s.log.Info("No active tasks for domain", "domain", domain)
		return 0, nil
	}
	ids := make([]uuid.UUID, 0, len(active))
	for _, t := range active {
		ids = append(ids, t.ID)
	}
	existing, err := s.schedules.ListTaskIDsForStudent(dbc, studentID, ids)
	if err != nil {
		return 0, err
	}

	now := s.now().UTC()
	var rows []*types.TaskSchedule
	for _, t := range active {
		if existing[t.ID] {
			continue
		}
		rows = append(rows, s.cal.Plan(t, studentID, now))
	}
	if len(rows) == 0 {
		s.log.Info("Schedules already initialized", "student_id", studentID, "domain", domain)
		return 0, nil
	}

	created, err := s.schedules.CreateIgnoreDuplicates(dbc, rows)
	if err != nil {
		return 0, err
	}
	s.log.Info("Schedules initialized", "student_id", studentID, "domain", domain, "created", created, "planned", len(rows))
	return int(created), nil
}

func (s *scheduleEngine) MySchedules(ctx context.Context, studentID uuid.UUID) ([]*types.TaskSchedule, error) {
	if studentID == uuid.Nil {
		return nil, validation("Tasks.ScheduleEngine.MySchedules", "studentId is required")
	}
	rows, err := s.schedules.ListByStudent(dbctx.Context{Ctx: ctx}, studentID)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.Task != nil && s.catalog != nil {
			r.Task = s.catalog.SignTask(ctx, r.Task)
		}
	}
	return rows, nil
}

func (s *scheduleEngine) CompletionStats(ctx context.Context, studentID uuid.UUID, domain string) (CompletionStats, error) {
	domain = strings.TrimSpace(domain)
	if studentID == uuid.Nil || domain == "" {
		return CompletionStats{}, validation("Tasks.ScheduleEngine.CompletionStats", "studentId and domain are required")
	}
	total, submitted, err := s.schedules.CountForDomain(dbctx.Context{Ctx: ctx}, studentID, domain)
	if err != nil {
		return CompletionStats{}, err
	}
	stats := ComputeCompletion(int(total), int(submitted))
	s.log.Info("Completion stats", "student_id", studentID, "domain", domain,
		"completed", stats.CompletedTasks, "total", stats.TotalTasks, "percent", stats.CompletionPercent)
	return stats, nil
}

func (s *scheduleEngine) SimulateDelay(ctx context.Context, studentID, taskID uuid.UUID) (*types.TaskSchedule, error) {
	sched, err := s.agg.ForceOverdue(ctx, domainagg.ForceOverdueInput{
		StudentID: studentID,
		TaskID:    taskID,
		Now:       s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Schedule forced overdue", "student_id", studentID, "task_id", taskID, "deadline", sched.Deadline)
	return sched, nil
}
