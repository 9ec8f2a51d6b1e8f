package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/observability"
)

// unmatchedRoute labels requests gin could not route, so scanners probing
// random paths do not mint a new series per path.
const unmatchedRoute = "unmatched"

// Metrics records per-route latency and the in-flight gauge. Health probes
// are not counted.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if isHealthProbe(c) {
			c.Next()
			return
		}
		m.ApiInflightInc()
		began := time.Now()
		defer func() {
			m.ApiInflightDec()
			route := c.FullPath()
			if route == "" {
				route = unmatchedRoute
			}
			m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(began))
		}()
		c.Next()
	}
}

func isHealthProbe(c *gin.Context) bool {
	switch c.FullPath() {
	case "/healthcheck", "/api/tasks/health":
		return true
	}
	return false
}
