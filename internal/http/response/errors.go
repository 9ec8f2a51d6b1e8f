package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/apierr"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/gcp"
)

// StatusOf maps an error onto its HTTP status and public error code.
func StatusOf(err error) (int, string) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae.HTTPStatusCode(), ae.Code
	}
	if errors.Is(err, gcp.ErrStorageDisabled) {
		return http.StatusServiceUnavailable, "storage_disabled"
	}
	switch code := domainagg.CodeOf(err); code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest, string(code)
	case domainagg.CodeNotFound:
		return http.StatusNotFound, string(code)
	case domainagg.CodeInvalidState, domainagg.CodeConflict,
		domainagg.CodeInvariantViolation, domainagg.CodePreconditionFailed:
		return http.StatusConflict, string(code)
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable, string(code)
	case domainagg.CodeInternal:
		return http.StatusInternalServerError, string(code)
	}
	return http.StatusInternalServerError, "internal"
}

// Fail writes err with the status StatusOf picks. Aggregate errors expose
// their message only; internal failures never leak their cause.
func Fail(c *gin.Context, err error) {
	status, code := StatusOf(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, status, code, errors.New(http.StatusText(status)))
		return
	}
	RespondError(c, status, code, errors.New(domainagg.MessageOf(err)))
}
