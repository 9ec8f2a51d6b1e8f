package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/ctxutil"
)

const (
	HeaderTraceID   = "X-Trace-Id"
	HeaderRequestID = "X-Request-Id"

	ginKeyTraceID   = "trace_id"
	ginKeyRequestID = "request_id"
)

// AttachTraceContext stores trace and request ids on the request context
// and echoes them in the response headers. An active otel span wins over an
// inbound X-Trace-Id so logs line up with exported traces.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		td := &ctxutil.TraceData{
			RequestID: headerOr(c, HeaderRequestID, uuid.NewString),
			TraceID:   spanTraceID(c),
		}
		if td.TraceID == "" {
			td.TraceID = headerOr(c, HeaderTraceID, func() string { return td.RequestID })
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Set(ginKeyTraceID, td.TraceID)
		c.Set(ginKeyRequestID, td.RequestID)
		c.Header(HeaderTraceID, td.TraceID)
		c.Header(HeaderRequestID, td.RequestID)
		c.Next()
	}
}

func spanTraceID(c *gin.Context) string {
	sc := trace.SpanContextFromContext(c.Request.Context())
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func headerOr(c *gin.Context, name string, fallback func() string) string {
	if v := strings.TrimSpace(c.GetHeader(name)); v != "" {
		return v
	}
	return fallback()
}
