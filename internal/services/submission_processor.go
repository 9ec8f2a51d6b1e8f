package services

import (
	"context"
	"math"
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

type SubmitInput struct {
	StudentID         uuid.UUID `json:"studentId"`
	TaskID            uuid.UUID `json:"taskId"`
	SubmissionFileURL string    `json:"submissionFileUrl"`
}

type ReviewSubmissionInput struct {
	Status   string
	Score    *int
	Feedback string
}

type Performance struct {
	AverageScore float64 `json:"averageScore"`
	GradedCount  int64   `json:"gradedCount"`
	Eligible     bool    `json:"eligible"`
}

type SubmissionProcessor interface {
	Submit(ctx context.Context, in SubmitInput) (*types.Submission, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Submission, error)
	ListPending(ctx context.Context) ([]*types.Submission, error)
	Review(ctx context.Context, id uuid.UUID, in ReviewSubmissionInput) (*types.Submission, error)
	Withdraw(ctx context.Context, id uuid.UUID) error
	Performance(ctx context.Context, studentID uuid.UUID) (Performance, error)
}

type submissionProcessor struct {
	db          *gorm.DB
	log         *logger.Logger
	submissions repos.SubmissionRepo
	agg         domainagg.ScheduleAggregate
	catalog     TaskCatalog
	files       gcp.FileStore
	now         func() time.Time
}

func NewSubmissionProcessor(
	db *gorm.DB,
	baseLog *logger.Logger,
	submissionRepo repos.SubmissionRepo,
	agg domainagg.ScheduleAggregate,
	catalog TaskCatalog,
	files gcp.FileStore,
	now func() time.Time,
) SubmissionProcessor {
	if now == nil {
		now = time.Now
	}
	return &submissionProcessor{
		db:          db,
		log:         baseLog.With("service", "SubmissionProcessor"),
		submissions: submissionRepo,
		agg:         agg,
		catalog:     catalog,
		files:       files,
		now:         now,
	}
}

func (s *submissionProcessor) Submit(ctx context.Context, in SubmitInput) (*types.Submission, error) {
	res, err := s.agg.Submit(ctx, domainagg.SubmitInput{
		StudentID:         in.StudentID,
		TaskID:            in.TaskID,
		SubmissionFileURL: in.SubmissionFileURL,
		SubmittedAt:       s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Task submitted",
		"student_id", in.StudentID,
		"task_id", in.TaskID,
		"status", res.Submission.Status,
		"delayed", res.Schedule.IsDelayed,
		"unlocked_next", res.UnlockedNext,
	)
	res.Submission.Task = res.Task
	return res.Submission, nil
}

func (s *submissionProcessor) signSubmission(ctx context.Context, sub *types.Submission) {
	if sub.SubmissionFileURL != "" && s.files != nil {
		if signed, err := s.files.SignURL(ctx, sub.SubmissionFileURL); err == nil {
			sub.SubmissionFileURL = signed
		} else {
			s.log.Warn("Submission URL signing failed; returning raw URL", "submission_id", sub.ID, "error", err)
		}
	}
	if sub.Task != nil && s.catalog != nil {
		sub.Task = s.catalog.SignTask(ctx, sub.Task)
	}
}

func (s *submissionProcessor) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*types.Submission, error) {
	if studentID == uuid.Nil {
		return nil, validation("Tasks.Submissions.ListByStudent", "studentId is required")
	}
	rows, err := s.submissions.ListByStudent(dbctx.Context{Ctx: ctx}, studentID)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		s.signSubmission(ctx, r)
	}
	return rows, nil
}

func (s *submissionProcessor) ListPending(ctx context.Context) ([]*types.Submission, error) {
	rows, err := s.submissions.ListByStatus(dbctx.Context{Ctx: ctx}, tasks.SubmissionPending)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		s.signSubmission(ctx, r)
	}
	return rows, nil
}

func (s *submissionProcessor) Review(ctx context.Context, id uuid.UUID, in ReviewSubmissionInput) (*types.Submission, error) {
	const op = "Tasks.Submissions.Review"
	status, ok := tasks.ParseSubmissionStatus(in.Status)
	if !ok {
		return nil, validation(op, "status must be one of PENDING, APPROVED, REJECTED, DELAYED")
	}
	if in.Score != nil && (*in.Score < 0 || *in.Score > 100) {
		return nil, validation(op, "score must be between 0 and 100")
	}
	dbc := dbctx.Context{Ctx: ctx}
	sub, err := s.submissions.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, notFound(op, "Submission not found")
	}

	now := s.now().UTC()
	updates := map[string]interface{}{
		"status":      status,
		"reviewed_at": now,
	}
	if in.Score != nil {
		updates["score"] = *in.Score
	}
	if fb := strings.TrimSpace(in.Feedback); fb != "" {
		updates["feedback"] = fb
	}
	if err := s.submissions.UpdateFields(dbc, sub.ID, updates); err != nil {
		return nil, err
	}
	s.log.Info("Submission reviewed", "submission_id", sub.ID, "status", status)

	out, err := s.submissions.GetByID(dbc, sub.ID)
	if err != nil {
		return nil, err
	}
	s.signSubmission(ctx, out)
	return out, nil
}

func (s *submissionProcessor) Withdraw(ctx context.Context, id uuid.UUID) error {
	sub, err := s.agg.WithdrawSubmission(ctx, id)
	if err != nil {
		return err
	}
	if s.files != nil && sub.SubmissionFileURL != "" && s.files.Owns(sub.SubmissionFileURL) {
		if err := s.files.Delete(ctx, sub.SubmissionFileURL); err != nil {
			s.log.Warn("Submission file delete failed", "submission_id", sub.ID, "error", err)
		}
	}
	s.log.Info("Submission withdrawn", "submission_id", sub.ID, "student_id", sub.StudentID, "task_id", sub.TaskID)
	return nil
}

func (s *submissionProcessor) Performance(ctx context.Context, studentID uuid.UUID) (Performance, error) {
	if studentID == uuid.Nil {
		return Performance{}, validation("Tasks.Submissions.Performance", "studentId is required")
	}
	avg, graded, err := s.submissions.ScoreSummary(dbctx.Context{Ctx: ctx}, studentID)
	if err != nil {
		return Performance{}, err
	}
	return performanceOf(avg, graded), nil
}

// performanceOf decides eligibility on the raw average; only the reported
// value is rounded.
func performanceOf(avg float64, graded int64) Performance {
	return Performance{
		AverageScore: math.Round(avg*100) / 100,
		GradedCount:  graded,
		Eligible:     graded > 0 && avg >= MinimumCompletionPercent,
	}
}
