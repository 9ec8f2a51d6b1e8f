package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/http/response"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/apierr"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/services"
)

type TaskHandler struct {
	catalog services.TaskCatalog
}

func NewTaskHandler(catalog services.TaskCatalog) *TaskHandler {
	return &TaskHandler{catalog: catalog}
}

type taskRequest struct {
	services.TaskInput
	Domain string `json:"domain" binding:"required"`
	WeekNo int    `json:"weekNo" binding:"required,gt=0"`
	Title  string `json:"title" binding:"required"`
}

func (r taskRequest) input() services.TaskInput {
	in := r.TaskInput
	in.Domain = r.Domain
	in.WeekNo = r.WeekNo
	in.Title = r.Title
	return in
}

// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req taskRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	task, err := h.catalog.Create(c.Request.Context(), req.input())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondCreated(c, task)
}

// GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	out, err := h.catalog.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	task, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, task)
}

// PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req taskRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}
	task, err := h.catalog.Update(c.Request.Context(), id, req.input())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, task)
}

// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /api/tasks/upload (multipart: file, folder)
func (h *TaskHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, apierr.BadRequest("missing_file", errors.New("file is required")))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Fail(c, apierr.BadRequest("unreadable_file", err))
		return
	}
	defer f.Close()

	folder := strings.TrimSpace(c.DefaultPostForm("folder", "tasks"))
	url, err := h.catalog.UploadFile(c.Request.Context(), folder, fh.Filename, f)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"url": url})
}

// GET /api/tasks/preview?fileUrl=
func (h *TaskHandler) Preview(c *gin.Context) {
	signed, err := h.catalog.PreviewURL(c.Request.Context(), c.Query("fileUrl"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"url": signed})
}

// DELETE /api/tasks/delete?taskId=&fileType=taskFile|video|urlFile
func (h *TaskHandler) DeleteContent(c *gin.Context) {
	taskID, err := queryUUID(c, "taskId")
	if err != nil {
		response.Fail(c, err)
		return
	}
	field, ok := tasks.ParseContentField(c.Query("fileType"))
	if !ok {
		response.Fail(c, apierr.BadRequest("invalid_file_type", errors.New("Invalid file type: "+c.Query("fileType"))))
		return
	}
	task, err := h.catalog.DeleteContent(c.Request.Context(), taskID, field)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, task)
}
