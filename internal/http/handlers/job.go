package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/http/response"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/jobs/scheduler"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/apierr"
)

// JobTrigger runs a registered periodic job once.
type JobTrigger interface {
	Trigger(ctx context.Context, name string) (ran bool, summary any, err error)
}

type JobHandler struct {
	jobs JobTrigger
}

func NewJobHandler(jobs JobTrigger) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// RoutineName accepts "reminder" or "reminder-job".
func RoutineName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.HasSuffix(name, "-job") {
		return name
	}
	return name + "-job"
}

func (h *JobHandler) run(c *gin.Context, name string) {
	ran, summary, err := h.jobs.Trigger(c.Request.Context(), RoutineName(name))
	if errors.Is(err, scheduler.ErrUnknownRoutine) {
		response.Fail(c, apierr.NotFound("unknown_job", err))
		return
	}
	if err != nil {
		response.Fail(c, err)
		return
	}
	if !ran {
		c.JSON(http.StatusAccepted, gin.H{"job": RoutineName(name), "ran": false, "reason": "lease held by another instance"})
		return
	}
	response.RespondOK(c, gin.H{"job": RoutineName(name), "ran": true, "summary": summary})
}

// POST /api/jobs/:name/run
func (h *JobHandler) Run(c *gin.Context) {
	h.run(c, c.Param("name"))
}

// POST /api/tasks/test-reminder
func (h *JobHandler) TestReminder(c *gin.Context) {
	h.run(c, "reminder")
}
