package repos

import (
	"gorm.io/gorm"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos/jobs"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos/tasks"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

type TaskRepo = tasks.TaskRepo
type ScheduleRepo = tasks.ScheduleRepo
type SubmissionRepo = tasks.SubmissionRepo
type ExtensionRepo = tasks.ExtensionRepo

type JobRunRepo = jobs.JobRunRepo
type JobLeaseRepo = jobs.JobLeaseRepo

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return tasks.NewTaskRepo(db, baseLog)
}

func NewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleRepo {
	return tasks.NewScheduleRepo(db, baseLog)
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return tasks.NewSubmissionRepo(db, baseLog)
}

func NewExtensionRepo(db *gorm.DB, baseLog *logger.Logger) ExtensionRepo {
	return tasks.NewExtensionRepo(db, baseLog)
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return jobs.NewJobRunRepo(db, baseLog)
}

func NewJobLeaseRepo(db *gorm.DB, baseLog *logger.Logger) JobLeaseRepo {
	return jobs.NewJobLeaseRepo(db, baseLog)
}
