package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/http/response"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/apierr"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/services"
)

type SubmissionHandler struct {
	submissions services.SubmissionProcessor
}

func NewSubmissionHandler(submissions services.SubmissionProcessor) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

type submitRequest struct {
	StudentID         uuid.UUID `json:"studentId" binding:"required"`
	TaskID            uuid.UUID `json:"taskId" binding:"required"`
	SubmissionFileURL string    `json:"submissionFileUrl" binding:"required"`
}

// POST /api/tasks/submit
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req submitRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	sub, err := h.submissions.Submit(c.Request.Context(), services.SubmitInput{
		StudentID:         req.StudentID,
		TaskID:            req.TaskID,
		SubmissionFileURL: strings.TrimSpace(req.SubmissionFileURL),
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondCreated(c, sub)
}

// GET /api/tasks/my-submissions?studentId=
func (h *SubmissionHandler) MySubmissions(c *gin.Context) {
	studentID, err := queryUUID(c, "studentId")
	if err != nil {
		response.Fail(c, err)
		return
	}
	out, err := h.submissions.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/tasks/submissions/pending
func (h *SubmissionHandler) Pending(c *gin.Context) {
	out, err := h.submissions.ListPending(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

type reviewBody struct {
	Feedback string `json:"feedback"`
}

// POST /api/tasks/submissions/:id/review?status=&score=
func (h *SubmissionHandler) Review(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	in := services.ReviewSubmissionInput{Status: c.Query("status")}
	if raw := strings.TrimSpace(c.Query("score")); raw != "" {
		score, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, apierr.BadRequest("invalid_score", errors.New("score must be an integer")))
			return
		}
		in.Score = &score
	}
	if c.Request.ContentLength > 0 {
		var body reviewBody
		if err := bindJSON(c, &body); err != nil {
			response.Fail(c, err)
			return
		}
		in.Feedback = body.Feedback
	}
	sub, err := h.submissions.Review(c.Request.Context(), id, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, sub)
}

// DELETE /api/tasks/submissions/:id
func (h *SubmissionHandler) Withdraw(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := h.submissions.Withdraw(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/tasks/performance?studentId=
func (h *SubmissionHandler) Performance(c *gin.Context) {
	studentID, err := queryUUID(c, "studentId")
	if err != nil {
		response.Fail(c, err)
		return
	}
	perf, err := h.submissions.Performance(c.Request.Context(), studentID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, perf)
}
