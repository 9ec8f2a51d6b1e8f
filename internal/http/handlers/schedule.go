package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/http/response"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/apierr"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/services"
)

type ScheduleHandler struct {
	engine services.ScheduleEngine
}

func NewScheduleHandler(engine services.ScheduleEngine) *ScheduleHandler {
	return &ScheduleHandler{engine: engine}
}

func queryDomain(c *gin.Context) (string, error) {
	domain := strings.TrimSpace(c.Query("domain"))
	if domain == "" {
		return "", apierr.BadRequest("missing_domain", errors.New("domain is required"))
	}
	return domain, nil
}

// POST /api/tasks/initialize?studentId=&domain=
func (h *ScheduleHandler) Initialize(c *gin.Context) {
	studentID, err := queryUUID(c, "studentId")
	if err != nil {
		response.Fail(c, err)
		return
	}
	domain, err := queryDomain(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	n, err := h.engine.InitializeSchedules(c.Request.Context(), studentID, domain)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"created": n})
}

// GET /api/tasks/my-tasks?studentId=
func (h *ScheduleHandler) MyTasks(c *gin.Context) {
	studentID, err := queryUUID(c, "studentId")
	if err != nil {
		response.Fail(c, err)
		return
	}
	rows, err := h.engine.MySchedules(c.Request.Context(), studentID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, rows)
}

// GET /api/tasks/completion-stats?studentId=&domain=
func (h *ScheduleHandler) CompletionStats(c *gin.Context) {
	studentID, err := queryUUID(c, "studentId")
	if err != nil {
		response.Fail(c, err)
		return
	}
	domain, err := queryDomain(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	stats, err := h.engine.CompletionStats(c.Request.Context(), studentID, domain)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// POST /api/tasks/simulate-delay?studentId=&taskId=
func (h *ScheduleHandler) SimulateDelay(c *gin.Context) {
	studentID, err := queryUUID(c, "studentId")
	if err != nil {
		response.Fail(c, err)
		return
	}
	taskID, err := queryUUID(c, "taskId")
	if err != nil {
		response.Fail(c, err)
		return
	}
	sched, err := h.engine.SimulateDelay(c.Request.Context(), studentID, taskID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, sched)
}
