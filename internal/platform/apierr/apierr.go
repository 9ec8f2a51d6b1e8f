// Package apierr carries request-level failures that already know the HTTP
// status and public code they map to. Domain failures use the aggregate error
// taxonomy instead.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	default:
		return http.StatusText(e.HTTPStatusCode())
	}
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatusCode defaults to 500 so a zero Error never renders as 200.
func (e *Error) HTTPStatusCode() int {
	if e == nil || e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Newf builds the message with fmt.Sprintf.
func Newf(status int, code, format string, args ...any) *Error {
	return New(status, code, fmt.Errorf(format, args...))
}

func BadRequest(code string, err error) *Error { return New(http.StatusBadRequest, code, err) }

func NotFound(code string, err error) *Error { return New(http.StatusNotFound, code, err) }

func Unauthorized(err error) *Error {
	if err == nil {
		err = errors.New("missing or invalid token")
	}
	return New(http.StatusUnauthorized, "unauthorized", err)
}

func Forbidden(err error) *Error {
	if err == nil {
		err = errors.New("forbidden")
	}
	return New(http.StatusForbidden, "forbidden", err)
}
