package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos"
	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/gcp"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

// TaskInput carries create/update fields. On update, nil content URLs clear
// the field, and nil flags or dates keep the stored value.
type TaskInput struct {
	Domain      string     `json:"domain"`
	WeekNo      int        `json:"weekNo"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TaskFileURL *string    `json:"taskFileUrl"`
	VideoURL    *string    `json:"videoUrl"`
	URLFileURL  *string    `json:"urlFileUrl"`
	StartDate   *time.Time `json:"startDate"`
	Deadline    *time.Time `json:"deadline"`
	IsManual    *bool      `json:"isManual"`
	AutoReview  *bool      `json:"autoReview"`
	Active      *bool      `json:"active"`
}

type TaskCatalog interface {
	Create(ctx context.Context, in TaskInput) (*types.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Task, error)
	List(ctx context.Context) ([]*types.Task, error)
	Update(ctx context.Context, id uuid.UUID, in TaskInput) (*types.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error

	UploadFile(ctx context.Context, folder, filename string, r io.Reader) (string, error)
	PreviewURL(ctx context.Context, fileURL string) (string, error)
	DeleteContent(ctx context.Context, taskID uuid.UUID, field types.ContentField) (*types.Task, error)

	// SignTask returns a copy of task with owned content URLs signed.
	SignTask(ctx context.Context, task *types.Task) *types.Task
}

type taskCatalog struct {
	db    *gorm.DB
	log   *logger.Logger
	tasks repos.TaskRepo
	agg   domainagg.TaskAggregate
	files gcp.FileStore
}

func NewTaskCatalog(db *gorm.DB, baseLog *logger.Logger, taskRepo repos.TaskRepo, agg domainagg.TaskAggregate, files gcp.FileStore) TaskCatalog {
	return &taskCatalog{
		db:    db,
		log:   baseLog.With("service", "TaskCatalog"),
		tasks: taskRepo,
		agg:   agg,
		files: files,
	}
}

func derefTrim(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func (s *taskCatalog) Create(ctx context.Context, in TaskInput) (*types.Task, error) {
	task := &types.Task{
		Domain:      in.Domain,
		WeekNo:      in.WeekNo,
		Title:       in.Title,
		Description: in.Description,
		TaskFileURL: derefTrim(in.TaskFileURL),
		VideoURL:    derefTrim(in.VideoURL),
		URLFileURL:  derefTrim(in.URLFileURL),
		StartDate:   in.StartDate,
		Deadline:    in.Deadline,
		Active:      true,
	}
	if in.IsManual != nil {
		task.IsManual = *in.IsManual
	}
	if in.AutoReview != nil {
		task.AutoReview = *in.AutoReview
	}
	if in.Active != nil {
		task.Active = *in.Active
	}
	res, err := s.agg.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	s.log.Info("Task created", "task_id", res.Task.ID, "domain", res.Task.Domain, "week_no", res.Task.WeekNo, "fanout_job", res.Job != nil)
	return s.SignTask(ctx, res.Task), nil
}

func (s *taskCatalog) load(ctx context.Context, op string, id uuid.UUID) (*types.Task, error) {
	task, err := s.tasks.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, notFound(op, "Task not found")
	}
	return task, nil
}

func (s *taskCatalog) Get(ctx context.Context, id uuid.UUID) (*types.Task, error) {
	task, err := s.load(ctx, "Tasks.Catalog.Get", id)
	if err != nil {
		return nil, err
	}
	return s.SignTask(ctx, task), nil
}

func (s *taskCatalog) List(ctx context.Context) ([]*types.Task, error) {
	rows, err := s.tasks.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, err
	}
	out := make([]*types.Task, 0, len(rows))
	for _, t := range rows {
		out = append(out, s.SignTask(ctx, t))
	}
	return out, nil
}

// isDerivedURL reports whether v is a signed rendition of a stored URL, which
// must never replace the stored value.
func (s *taskCatalog) isDerivedURL(v string) bool {
	if gcp.LooksSigned(v) {
		return true
	}
	return strings.Contains(v, "?") && s.files != nil && s.files.Owns(v)
}

func (s *taskCatalog) Update(ctx context.Context, id uuid.UUID, in TaskInput) (*types.Task, error) {
	const op = "Tasks.Catalog.Update"
	domain := strings.TrimSpace(in.Domain)
	title := strings.TrimSpace(in.Title)
	if domain == "" || title == "" {
		return nil, validation(op, "domain and title are required")
	}
	if in.WeekNo <= 0 {
		return nil, validation(op, "weekNo must be positive")
	}

	task, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"domain":      domain,
		"week_no":     in.WeekNo,
		"title":       title,
		"description": in.Description,
	}
	for field, v := range map[types.ContentField]*string{
		tasks.ContentTaskFile: in.TaskFileURL,
		tasks.ContentVideo:    in.VideoURL,
		tasks.ContentURLFile:  in.URLFileURL,
	} {
		switch {
		case v == nil:
			updates[field.Column()] = ""
		case s.isDerivedURL(*v):
			// keep stored
		default:
			updates[field.Column()] = strings.TrimSpace(*v)
		}
	}
	if in.StartDate != nil {
		updates["start_date"] = in.StartDate.UTC()
	}
	if in.Deadline != nil {
		updates["deadline"] = in.Deadline.UTC()
	}
	if in.IsManual != nil {
		updates["is_manual"] = *in.IsManual
	}
	if in.AutoReview != nil {
		updates["auto_review"] = *in.AutoReview
	}
	if in.Active != nil {
		updates["active"] = *in.Active
	}

	if err := s.tasks.UpdateFields(dbctx.Context{Ctx: ctx}, task.ID, updates); err != nil {
		return nil, err
	}
	s.log.Info("Task updated", "task_id", task.ID)
	return s.Get(ctx, task.ID)
}

func (s *taskCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	task, err := s.load(ctx, "Tasks.Catalog.Delete", id)
	if err != nil {
		return err
	}
	if err := s.agg.Delete(ctx, id); err != nil {
		return err
	}
	for _, f := range []types.ContentField{tasks.ContentTaskFile, tasks.ContentVideo, tasks.ContentURLFile} {
		s.deleteObject(ctx, task.URL(f))
	}
	s.log.Info("Task deleted", "task_id", id, "title", task.Title)
	return nil
}

// deleteObject removes a stored object when it lives in our bucket. Failures
// are logged; the row change has already been made.
func (s *taskCatalog) deleteObject(ctx context.Context, rawURL string) {
	if rawURL == "" || s.files == nil || !s.files.Owns(rawURL) {
		return
	}
	if err := s.files.Delete(ctx, rawURL); err != nil {
		s.log.Warn("Stored object delete failed", "url", rawURL, "error", err)
	}
}

func (s *taskCatalog) UploadFile(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	const op = "Tasks.Catalog.UploadFile"
	if strings.TrimSpace(filename) == "" {
		return "", validation(op, "file is required")
	}
	u, err := s.files.Upload(ctx, folder, filename, r)
	if errors.Is(err, gcp.ErrStorageDisabled) {
		return "", domainagg.NewError(domainagg.CodePreconditionFailed, op, err.Error(), err)
	}
	return u, err
}

func (s *taskCatalog) PreviewURL(ctx context.Context, fileURL string) (string, error) {
	if strings.TrimSpace(fileURL) == "" {
		return "", validation("Tasks.Catalog.PreviewURL", "fileUrl is required")
	}
	return s.files.SignURL(ctx, strings.TrimSpace(fileURL))
}

func (s *taskCatalog) DeleteContent(ctx context.Context, taskID uuid.UUID, field types.ContentField) (*types.Task, error) {
	const op = "Tasks.Catalog.DeleteContent"
	if field.Column() == "" {
		return nil, validation(op, "Invalid file type: "+string(field))
	}
	task, err := s.load(ctx, op, taskID)
	if err != nil {
		return nil, err
	}
	old := task.URL(field)
	if err := s.tasks.UpdateFields(dbctx.Context{Ctx: ctx}, task.ID, map[string]interface{}{field.Column(): ""}); err != nil {
		return nil, err
	}
	s.deleteObject(ctx, old)
	s.log.Info("Task content removed", "task_id", task.ID, "field", field)
	return s.Get(ctx, task.ID)
}

func (s *taskCatalog) sign(ctx context.Context, raw string) string {
	if raw == "" || s.files == nil {
		return raw
	}
	signed, err := s.files.SignURL(ctx, raw)
	if err != nil {
		s.log.Warn("URL signing failed; returning raw URL", "error", err)
		return raw
	}
	return signed
}

func (s *taskCatalog) SignTask(ctx context.Context, task *types.Task) *types.Task {
	if task == nil {
		return nil
	}
	cp := *task
	cp.TaskFileURL = s.sign(ctx, cp.TaskFileURL)
	cp.VideoURL = s.sign(ctx, cp.VideoURL)
	cp.URLFileURL = s.sign(ctx, cp.URLFileURL)
	return &cp
}
