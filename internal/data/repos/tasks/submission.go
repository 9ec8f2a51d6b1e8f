package tasks

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

type SubmissionRepo interface {
	Create(dbc dbctx.Context, sub *types.Submission) (*types.Submission, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Submission, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Submission, error)
	ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.Submission, error)
	ListByStatus(dbc dbctx.Context, status types.SubmissionStatus) ([]*types.Submission, error)
	CountByStudentTask(dbc dbctx.Context, studentID, taskID uuid.UUID) (int64, error)
	ScoreSummary(dbc dbctx.Context, studentID uuid.UUID) (avg float64, graded int64, err error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return &submissionRepo{
		db:  db,
		log: baseLog.With("repo", "SubmissionRepo"),
	}
}

func (r *submissionRepo) Create(dbc dbctx.Context, sub *types.Submission) (*types.Submission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Omit("Task").Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *submissionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Submission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var sub types.Submission
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Task").
		Where("id = ?", id).
		Limit(1).
		Find(&sub).Error; err != nil {
		return nil, err
	}
	if sub.ID == uuid.Nil {
		return nil, nil
	}
	return &sub, nil
}

func (r *submissionRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Submission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var sub types.Submission
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&sub).Error; err != nil {
		return nil, err
	}
	if sub.ID == uuid.Nil {
		return nil, nil
	}
	return &sub, nil
}

func (r *submissionRepo) ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.Submission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Submission
	if studentID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Task").
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *submissionRepo) ListByStatus(dbc dbctx.Context, status types.SubmissionStatus) ([]*types.Submission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Submission
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Task").
		Where("status = ?", status).
		Order("submitted_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *submissionRepo) CountByStudentTask(dbc dbctx.Context, studentID, taskID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Submission{}).
		Where("student_id = ? AND task_id = ?", studentID, taskID).
		Count(&count).Error
	return count, err
}

// ScoreSummary averages the scores of the student's graded submissions.
func (r *submissionRepo) ScoreSummary(dbc dbctx.Context, studentID uuid.UUID) (float64, int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if studentID == uuid.Nil {
		return 0, 0, nil
	}
	var row struct {
		Total  float64
		Graded int64
	}
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Submission{}).
		Select("COALESCE(SUM(score), 0) AS total, COUNT(score) AS graded").
		Where("student_id = ?", studentID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	if row.Graded == 0 {
		return 0, 0, nil
	}
	return row.Total / float64(row.Graded), row.Graded, nil
}

func (r *submissionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Submission{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *submissionRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Submission{}).Error
}
