package tasks

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

type TaskRepo interface {
	Create(dbc dbctx.Context, task *types.Task) (*types.Task, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error)
	List(dbc dbctx.Context) ([]*types.Task, error)
	ListActiveByDomain(dbc dbctx.Context, domain string) ([]*types.Task, error)
	ListActiveByDomainWeek(dbc dbctx.Context, domain string, weekNo int) ([]*types.Task, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteCascade(dbc dbctx.Context, id uuid.UUID) error
}

type taskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return &taskRepo{
		db:  db,
		log: baseLog.With("repo", "TaskRepo"),
	}
}

func (r *taskRepo) Create(dbc dbctx.Context, task *types.Task) (*types.Task, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Task, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var task types.Task
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&task).Error; err != nil {
		return nil, err
	}
	if task.ID == uuid.Nil {
		return nil, nil
	}
	return &task, nil
}

func (r *taskRepo) List(dbc dbctx.Context) ([]*types.Task, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Task
	if err := transaction.WithContext(dbc.Ctx).
		Order("domain ASC, week_no ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) ListActiveByDomain(dbc dbctx.Context, domain string) ([]*types.Task, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Task
	if domain == "" {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("domain = ? AND active = ?", domain, true).
		Order("week_no ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) ListActiveByDomainWeek(dbc dbctx.Context, domain string, weekNo int) ([]*types.Task, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Task
	if domain == "" || weekNo <= 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("domain = ? AND week_no = ? AND active = ?", domain, weekNo, true).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taskRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Task{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DeleteCascade removes the task together with every row that references it.
// Run it inside a transaction; foreign keys are not relied on because SQLite
// does not enforce them by default.
func (r *taskRepo) DeleteCascade(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	tx := transaction.WithContext(dbc.Ctx)
	for _, model := range []interface{}{
		&types.ExtensionRequest{},
		&types.Submission{},
		&types.TaskSchedule{},
	} {
		if err := tx.Where("task_id = ?", id).Delete(model).Error; err != nil {
			return err
		}
	}
	return tx.Where("id = ?", id).Delete(&types.Task{}).Error
}
