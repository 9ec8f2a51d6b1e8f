package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/aggregates"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/jobs/lease"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/jobs/pipeline/task_created"
	jobruntime "github.com/rishiwork16-sys/skilledUp-Website/internal/jobs/runtime"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/jobs/scheduler"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/jobs/worker"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/observability"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/services"
)

const (
	UnlockJob   = "unlock-job"
	DeadlineJob = "deadline-job"
	ReminderJob = "reminder-job"
)

type Services struct {
	// Core
	Catalog     services.TaskCatalog
	Engine      services.ScheduleEngine
	Submissions services.SubmissionProcessor
	Extensions  services.ExtensionProcessor
	Notifier    services.StudentNotifier

	// Time-driven jobs
	Unlock   services.UnlockScheduler
	Deadline services.DeadlineMonitor
	Reminder services.ReminderScheduler

	// Job infra
	JobRegistry *jobruntime.Registry
	JobWorker   *worker.Worker
	Scheduler   *scheduler.Scheduler
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	cal := tasks.NewCalendar(cfg.Location())
	strategy, err := services.ParseUnlockStrategy(cfg.UnlockStrategy)
	if err != nil {
		return Services{}, err
	}

	base := aggregates.BaseDeps{DB: db, Log: log}
	if metrics != nil {
		base.Hooks = aggregates.NewMetricsHooks(metrics)
	}
	taskAgg := aggregates.NewTaskAggregate(aggregates.TaskAggregateDeps{
		Base:    base,
		Tasks:   reposet.Task,
		JobRuns: reposet.JobRun,
	})
	scheduleAgg := aggregates.NewScheduleAggregate(aggregates.ScheduleAggregateDeps{
		Base:        base,
		Tasks:       reposet.Task,
		Schedules:   reposet.Schedule,
		Submissions: reposet.Submission,
		Calendar:    cal,
	})
	extensionAgg := aggregates.NewExtensionAggregate(aggregates.ExtensionAggregateDeps{
		Base:       base,
		Extensions: reposet.Extension,
		Schedules:  reposet.Schedule,
		Calendar:   cal,
	})
	if err := domainagg.ValidateContracts(taskAgg, scheduleAgg, extensionAgg); err != nil {
		return Services{}, fmt.Errorf("aggregate contracts: %w", err)
	}

	notifier := services.NewStudentNotifier(log, clients.Students, clients.Sender, clients.Templates, cal, metrics)
	catalog := services.NewTaskCatalog(db, log, reposet.Task, taskAgg, clients.Files)
	engine := services.NewScheduleEngine(db, log, reposet.Task, reposet.Schedule, scheduleAgg, catalog, cal, nil)
	submissions := services.NewSubmissionProcessor(db, log, reposet.Submission, scheduleAgg, catalog, clients.Files, nil)
	extensions := services.NewExtensionProcessor(db, log, reposet.Extension, reposet.Task, extensionAgg, notifier, nil)

	unlock := services.NewUnlockScheduler(log, reposet.Schedule, scheduleAgg, notifier, cal, strategy, nil)
	deadline := services.NewDeadlineMonitor(log, reposet.Schedule, scheduleAgg, notifier, nil)
	reminder := services.NewReminderScheduler(log, reposet.Schedule, notifier, cfg.ReminderThrottleDays, nil)

	// TaskCreated fan-out runs on the job_run worker.
	registry := jobruntime.NewRegistry()
	if err := registry.Register(task_created.New(log, clients.Students, engine, cfg.FanoutConcurrency)); err != nil {
		return Services{}, fmt.Errorf("register task_created: %w", err)
	}
	jobWorker := worker.NewWorker(db, log, reposet.JobRun, registry, worker.Config{
		Concurrency: cfg.WorkerConcurrency,
		MaxAttempts: cfg.JobMaxAttempts,
	})

	sched, err := wireScheduler(log, cfg, reposet, clients, metrics, unlock, deadline, reminder)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Catalog:     catalog,
		Engine:      engine,
		Submissions: submissions,
		Extensions:  extensions,
		Notifier:    notifier,

		Unlock:   unlock,
		Deadline: deadline,
		Reminder: reminder,

		JobRegistry: registry,
		JobWorker:   jobWorker,
		Scheduler:   sched,
	}, nil
}

func wireScheduler(
	log *logger.Logger,
	cfg Config,
	reposet Repos,
	clients Clients,
	metrics *observability.Metrics,
	unlock services.UnlockScheduler,
	deadline services.DeadlineMonitor,
	reminder services.ReminderScheduler,
) (*scheduler.Scheduler, error) {
	var locker lease.Locker
	switch cfg.LeaseBackend {
	case "redis":
		if clients.Redis == nil {
			return nil, fmt.Errorf("LEASE_BACKEND=redis requires REDIS_ADDR")
		}
		locker = lease.NewRedisLocker(log, clients.Redis, "skilledup:lease:")
	default:
		locker = lease.NewDBLocker(log, reposet.JobLease)
	}

	s := scheduler.New(log, locker, cfg.LeaseTTL, metrics)
	routines := []scheduler.Routine{
		{
			Name:     UnlockJob,
			Interval: cfg.UnlockInterval,
			FirstRun: scheduler.NextMidnight(cfg.Location()),
			Run: func(ctx context.Context) (any, error) {
				return unlock.Run(ctx)
			},
		},
		{
			Name:     DeadlineJob,
			Interval: cfg.DeadlineInterval,
			Run: func(ctx context.Context) (any, error) {
				return deadline.Run(ctx)
			},
		},
		{
			Name:     ReminderJob,
			Interval: cfg.ReminderInterval,
			FirstRun: func(now time.Time) time.Time { return now.Add(time.Minute) },
			Run: func(ctx context.Context) (any, error) {
				return reminder.Run(ctx)
			},
		},
	}
	for _, r := range routines {
		if err := s.Register(r); err != nil {
			return nil, err
		}
	}
	return s, nil
}
