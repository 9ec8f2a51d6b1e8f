package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos"
	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

type ExtensionRequestInput struct {
	StudentID     uuid.UUID `json:"studentId"`
	TaskID        uuid.UUID `json:"taskId"`
	Reason        string    `json:"reason"`
	RequestedDays int       `json:"requestedDays"`
}

type ExtensionProcessor interface {
	CreateRequest(ctx context.Context, in ExtensionRequestInput) (*types.ExtensionRequest, error)
	// ReviewRequest settles a pending request. The student is notified after
	// the review commits; notification failures are logged only.
	ReviewRequest(ctx context.Context, requestID uuid.UUID, approved bool) (*types.ExtensionRequest, error)
	ListPending(ctx context.Context) ([]*types.ExtensionRequest, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*types.ExtensionRequest, error)
}

type extensionProcessor struct {
	db         *gorm.DB
	log        *logger.Logger
	extensions repos.ExtensionRepo
	tasks      repos.TaskRepo
	agg        domainagg.ExtensionAggregate
	notifier   StudentNotifier
	now        func() time.Time
}

func NewExtensionProcessor(
	db *gorm.DB,
	baseLog *logger.Logger,
	extensionRepo repos.ExtensionRepo,
	taskRepo repos.TaskRepo,
	agg domainagg.ExtensionAggregate,
	notifier StudentNotifier,
	now func() time.Time,
) ExtensionProcessor {
	if now == nil {
		now = time.Now
	}
	return &extensionProcessor{
		db:         db,
		log:        baseLog.With("service", "ExtensionProcessor"),
		extensions: extensionRepo,
		tasks:      taskRepo,
		agg:        agg,
		notifier:   notifier,
		now:        now,
	}
}

func (s *extensionProcessor) CreateRequest(ctx context.Context, in ExtensionRequestInput) (*types.ExtensionRequest, error) {
	const op = "Tasks.Extensions.CreateRequest"
	if in.StudentID == uuid.Nil || in.TaskID == uuid.Nil {
		return nil, validation(op, "studentId and taskId are required")
	}
	if in.RequestedDays <= 0 {
		return nil, validation(op, "requestedDays must be greater than 0")
	}
	req, err := s.extensions.Create(dbctx.Context{Ctx: ctx}, &types.ExtensionRequest{
		StudentID:     in.StudentID,
		TaskID:        in.TaskID,
		Reason:        strings.TrimSpace(in.Reason),
		RequestedDays: in.RequestedDays,
		Status:        types.ExtensionPending,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Extension requested", "request_id", req.ID, "student_id", req.StudentID, "task_id", req.TaskID, "days", req.RequestedDays)
	return req, nil
}

func (s *extensionProcessor) ReviewRequest(ctx context.Context, requestID uuid.UUID, approved bool) (*types.ExtensionRequest, error) {
	res, err := s.agg.Review(ctx, domainagg.ReviewExtensionInput{
		RequestID:  requestID,
		Approved:   approved,
		ReviewedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Extension reviewed", "request_id", res.Request.ID, "status", res.Request.Status)

	if s.notifier != nil {
		task, terr := s.tasks.GetByID(dbctx.Context{Ctx: ctx}, res.Request.TaskID)
		if terr != nil {
			s.log.Warn("Task lookup for extension email failed", "task_id", res.Request.TaskID, "error", terr)
		}
		if nerr := s.notifier.ExtensionReviewed(ctx, res.Request, res.Schedule, task); nerr != nil {
			s.log.Warn("Extension review email failed", "request_id", res.Request.ID, "error", nerr)
		}
	}
	return res.Request, nil
}

func (s *extensionProcessor) ListPending(ctx context.Context) ([]*types.ExtensionRequest, error) {
	return s.extensions.ListByStatus(dbctx.Context{Ctx: ctx}, types.ExtensionPending)
}

func (s *extensionProcessor) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*types.ExtensionRequest, error) {
	if studentID == uuid.Nil {
		return nil, validation("Tasks.Extensions.ListByStudent", "studentId is required")
	}
	return s.extensions.ListByStudent(dbctx.Context{Ctx: ctx}, studentID)
}
