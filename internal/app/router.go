package app

import (
	"github.com/rishiwork16-sys/skilledUp-Website/internal/http"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/observability"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		ServiceName:       cfg.ServiceName,
		Tracing:           cfg.OtelEnabled,
		CORSOrigins:       cfg.CORSOrigins,
		AuthMiddleware:    middleware.Auth,
		HealthHandler:     handlers.Health,
		TaskHandler:       handlers.Task,
		ScheduleHandler:   handlers.Schedule,
		SubmissionHandler: handlers.Submission,
		ExtensionHandler:  handlers.Extension,
		JobHandler:        handlers.Job,
	})
}
