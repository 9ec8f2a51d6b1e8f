package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/apierr"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domainagg.NewError(domainagg.CodeValidation, "op", "bad", nil), http.StatusBadRequest},
		{domainagg.NewError(domainagg.CodeNotFound, "op", "Task not found", nil), http.StatusNotFound},
		{domainagg.NewError(domainagg.CodeInvalidState, "op", "Task is not unlocked yet", nil), http.StatusConflict},
		{fmt.Errorf("wrapped: %w", domainagg.NewError(domainagg.CodeConflict, "op", "x", nil)), http.StatusConflict},
		{domainagg.NewError(domainagg.CodeRetryable, "op", "x", nil), http.StatusServiceUnavailable},
		{apierr.BadRequest("invalid_id", errors.New("bad id")), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got, _ := StatusOf(c.err); got != c.status {
			t.Fatalf("%v: want=%d got=%d", c.err, c.status, got)
		}
	}
}

func TestFailWritesMessageOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Fail(c, domainagg.NewError(domainagg.CodeInvalidState, "Tasks.Schedule.Submit", "Task already submitted", nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status: want=409 got=%d", rec.Code)
	}
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Message != "Task already submitted" || env.Error.Code != "invalid_state" {
		t.Fatalf("envelope: got=%+v", env.Error)
	}

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	Fail(c, errors.New("pq: connection refused"))
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Error.Message != "Internal Server Error" {
		t.Fatalf("internal errors must not leak: got=%q", env.Error.Message)
	}
}
