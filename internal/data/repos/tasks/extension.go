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

type ExtensionRepo interface {
	Create(dbc dbctx.Context, req *types.ExtensionRequest) (*types.ExtensionRequest, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ExtensionRequest, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.ExtensionRequest, error)
	ListByStatus(dbc dbctx.Context, status types.ExtensionStatus) ([]*types.ExtensionRequest, error)
	ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.ExtensionRequest, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type extensionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExtensionRepo(db *gorm.DB, baseLog *logger.Logger) ExtensionRepo {
	return &extensionRepo{
		db:  db,
		log: baseLog.With("repo", "ExtensionRepo"),
	}
}

func (r *extensionRepo) Create(dbc dbctx.Context, req *types.ExtensionRequest) (*types.ExtensionRequest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(req).Error; err != nil {
		return nil, err
	}
	return req, nil
}

func (r *extensionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ExtensionRequest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return r.find(transaction.WithContext(dbc.Ctx), id)
}

func (r *extensionRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.ExtensionRequest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return r.find(transaction.WithContext(dbc.Ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *extensionRepo) find(q *gorm.DB, id uuid.UUID) (*types.ExtensionRequest, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var req types.ExtensionRequest
	if err := q.Where("id = ?", id).Limit(1).Find(&req).Error; err != nil {
		return nil, err
	}
	if req.ID == uuid.Nil {
		return nil, nil
	}
	return &req, nil
}

func (r *extensionRepo) ListByStatus(dbc dbctx.Context, status types.ExtensionStatus) ([]*types.ExtensionRequest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ExtensionRequest
	if err := transaction.WithContext(dbc.Ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *extensionRepo) ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.ExtensionRequest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ExtensionRequest
	if studentID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *extensionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.ExtensionRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}
