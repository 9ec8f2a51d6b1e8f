package app

import (
	"context"

	"gorm.io/gorm"

	httpH "github.com/rishiwork16-sys/skilledUp-Website/internal/http/handlers"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Task       *httpH.TaskHandler
	Schedule   *httpH.ScheduleHandler
	Submission *httpH.SubmissionHandler
	Extension  *httpH.ExtensionHandler
	Job        *httpH.JobHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(pingDB(db)),
		Task:       httpH.NewTaskHandler(services.Catalog),
		Schedule:   httpH.NewScheduleHandler(services.Engine),
		Submission: httpH.NewSubmissionHandler(services.Submissions),
		Extension:  httpH.NewExtensionHandler(services.Extensions),
		Job:        httpH.NewJobHandler(services.Scheduler),
	}
}

func pingDB(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
