package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/rishiwork16-sys/skilledUp-Website/internal/http/handlers"
	httpMW "github.com/rishiwork16-sys/skilledUp-Website/internal/http/middleware"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/observability"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	Tracing     bool
	CORSOrigins []string

	// AuthMiddleware guards admin routes; nil leaves them open.
	AuthMiddleware *httpMW.AuthMiddleware

	TaskHandler       *httpH.TaskHandler
	ScheduleHandler   *httpH.ScheduleHandler
	SubmissionHandler *httpH.SubmissionHandler
	ExtensionHandler  *httpH.ExtensionHandler
	JobHandler        *httpH.JobHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	admin := cfg.AuthMiddleware.RequireRole(httpMW.RoleAdmin)

	if cfg.HealthHandler != nil {
		api.GET("/tasks/health", cfg.HealthHandler.TaskHealth)
	}

	// Task catalog
	if h := cfg.TaskHandler; h != nil {
		api.GET("/tasks", h.List)
		api.GET("/tasks/:id", h.Get)
		api.GET("/tasks/preview", h.Preview)
		api.POST("/tasks", admin, h.Create)
		api.PUT("/tasks/:id", admin, h.Update)
		api.DELETE("/tasks/:id", admin, h.Delete)
		api.POST("/tasks/upload", h.Upload)
		api.DELETE("/tasks/delete", admin, h.DeleteContent)
	}

	// Schedules
	if h := cfg.ScheduleHandler; h != nil {
		api.POST("/tasks/initialize", h.Initialize)
		api.GET("/tasks/my-tasks", h.MyTasks)
		api.GET("/tasks/completion-stats", h.CompletionStats)
		api.POST("/tasks/simulate-delay", admin, h.SimulateDelay)
	}

	// Submissions
	if h := cfg.SubmissionHandler; h != nil {
		api.POST("/tasks/submit", h.Submit)
		api.GET("/tasks/my-submissions", h.MySubmissions)
		api.GET("/tasks/performance", h.Performance)
		api.GET("/tasks/submissions/pending", admin, h.Pending)
		api.POST("/tasks/submissions/:id/review", admin, h.Review)
		api.DELETE("/tasks/submissions/:id", h.Withdraw)
	}

	// Extensions
	if h := cfg.ExtensionHandler; h != nil {
		api.POST("/extensions/request", h.Request)
		api.POST("/extensions/:id/review", admin, h.Review)
		api.GET("/extensions/pending", admin, h.Pending)
		api.GET("/extensions/student/:id", h.ByStudent)
	}

	// Jobs
	if h := cfg.JobHandler; h != nil {
		api.POST("/jobs/:name/run", admin, h.Run)
		api.POST("/tasks/test-reminder", admin, h.TestReminder)
	}

	return r
}
