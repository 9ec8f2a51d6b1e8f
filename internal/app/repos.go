package app

import (
	"gorm.io/gorm"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

type Repos struct {
	Task       repos.TaskRepo
	Schedule   repos.ScheduleRepo
	Submission repos.SubmissionRepo
	Extension  repos.ExtensionRepo

	JobRun   repos.JobRunRepo
	JobLease repos.JobLeaseRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Task:       repos.NewTaskRepo(db, log),
		Schedule:   repos.NewScheduleRepo(db, log),
		Submission: repos.NewSubmissionRepo(db, log),
		Extension:  repos.NewExtensionRepo(db, log),

		JobRun:   repos.NewJobRunRepo(db, log),
		JobLease: repos.NewJobLeaseRepo(db, log),
	}
}
