package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

// HealthHandler serves the liveness probes. Ping, when set, gates
// /healthcheck on the store being reachable.
type HealthHandler struct {
	Ping func(ctx context.Context) error
}

func NewHealthHandler(ping ...func(ctx context.Context) error) *HealthHandler {
	h := &HealthHandler{}
	if len(ping) > 0 {
		h.Ping = ping[0]
	}
	return h
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			_ = c.Error(err)
			c.String(http.StatusServiceUnavailable, "unavailable")
			return
		}
	}
	c.String(http.StatusOK, "ok")
}

// GET /api/tasks/health
func (h *HealthHandler) TaskHealth(c *gin.Context) {
	c.String(http.StatusOK, "Task Service is running")
}
