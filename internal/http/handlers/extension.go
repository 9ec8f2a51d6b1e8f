package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/http/response"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/services"
)

type ExtensionHandler struct {
	extensions services.ExtensionProcessor
}

func NewExtensionHandler(extensions services.ExtensionProcessor) *ExtensionHandler {
	return &ExtensionHandler{extensions: extensions}
}

type extensionRequest struct {
	StudentID     uuid.UUID `json:"studentId" binding:"required"`
	TaskID        uuid.UUID `json:"taskId" binding:"required"`
	Reason        string    `json:"reason"`
	RequestedDays int       `json:"requestedDays"`
}

// POST /api/extensions/request
func (h *ExtensionHandler) Request(c *gin.Context) {
	var req extensionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	out, err := h.extensions.CreateRequest(c.Request.Context(), services.ExtensionRequestInput{
		StudentID:     req.StudentID,
		TaskID:        req.TaskID,
		Reason:        req.Reason,
		RequestedDays: req.RequestedDays,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondCreated(c, out)
}

type extensionReview struct {
	Approved *bool `json:"approved" binding:"required"`
}

// POST /api/extensions/:id/review
func (h *ExtensionHandler) Review(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var body extensionReview
	if err := bindJSON(c, &body); err != nil {
		response.Fail(c, err)
		return
	}
	out, err := h.extensions.ReviewRequest(c.Request.Context(), id, *body.Approved)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/extensions/pending
func (h *ExtensionHandler) Pending(c *gin.Context) {
	out, err := h.extensions.ListPending(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/extensions/student/:id
func (h *ExtensionHandler) ByStudent(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	out, err := h.extensions.ListByStudent(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}
