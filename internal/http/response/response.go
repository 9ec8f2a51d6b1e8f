package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the body every failed request carries under "error".
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError aborts the chain so later handlers never write a second body.
func RespondError(c *gin.Context, status int, code string, err error) {
	body := APIError{Code: code, Message: http.StatusText(status)}
	if err != nil && err.Error() != "" {
		body.Message = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

func RespondOK(c *gin.Context, payload any)      { c.JSON(http.StatusOK, payload) }
func RespondCreated(c *gin.Context, payload any) { c.JSON(http.StatusCreated, payload) }
func RespondNoContent(c *gin.Context)            { c.Status(http.StatusNoContent) }
