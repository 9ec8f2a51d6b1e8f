package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/ctxutil"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

// RequestLogger writes one access line per request. Health probes log at
// debug; 4xx at warn; 5xx at error with the last handler error attached.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("component", "http")
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(began).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			kv = append(kv, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if p := ctxutil.GetPrincipal(c.Request.Context()); p != nil && p.Subject != "" {
			kv = append(kv, "principal", p.Subject, "role", p.Role)
		}
		if sid := c.Query("studentId"); sid != "" {
			kv = append(kv, "student_id", sid)
		}
		if last := c.Errors.Last(); last != nil {
			kv = append(kv, "error", last.Error())
		}

		switch {
		case isHealthProbe(c):
			log.Debug("HTTP request", kv...)
		case status >= 500:
			log.Error("HTTP request", kv...)
		case status >= 400:
			log.Warn("HTTP request", kv...)
		default:
			log.Info("HTTP request", kv...)
		}
	}
}
