package jobs

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

// JobLeaseRepo stores named, expiring locks in job_lease. The row layout
// matches the shedlock table (name, lock_until, locked_at, locked_by).
type JobLeaseRepo interface {
	TryAcquire(dbc dbctx.Context, name, holder string, now time.Time, ttl time.Duration) (bool, error)
	Release(dbc dbctx.Context, name, holder string, now time.Time) error
	Get(dbc dbctx.Context, name string) (*types.JobLease, error)
}

type jobLeaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobLeaseRepo(db *gorm.DB, baseLog *logger.Logger) JobLeaseRepo {
	return &jobLeaseRepo{
		db:  db,
		log: baseLog.With("repo", "JobLeaseRepo"),
	}
}

// TryAcquire takes the lease when it is free or expired. A live lease is
// never re-granted, not even to its own holder, so holder should be unique
// per acquisition. The conditional UPDATE is the arbiter: exactly one caller
// sees a row affected.
func (r *jobLeaseRepo) TryAcquire(dbc dbctx.Context, name, holder string, now time.Time, ttl time.Duration) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now = now.UTC()
	tx := transaction.WithContext(dbc.Ctx)

	seed := &types.JobLease{Name: name, LockUntil: now.Add(-time.Second), LockedAt: now, LockedBy: ""}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
		return false, err
	}

	res := tx.Model(&types.JobLease{}).
		Where("name = ? AND lock_until <= ?", name, now).
		Updates(map[string]interface{}{
			"lock_until": now.Add(ttl),
			"locked_at":  now,
			"locked_by":  holder,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Release ends the lease early if holder still owns it. The row is kept so
// later acquirers only ever UPDATE.
func (r *jobLeaseRepo) Release(dbc dbctx.Context, name, holder string, now time.Time) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.JobLease{}).
		Where("name = ? AND locked_by = ?", name, holder).
		Updates(map[string]interface{}{
			"lock_until": now.UTC(),
		}).Error
}

func (r *jobLeaseRepo) Get(dbc dbctx.Context, name string) (*types.JobLease, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.JobLease
	if err := transaction.WithContext(dbc.Ctx).
		Where("name = ?", name).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.Name == "" {
		return nil, nil
	}
	return &row, nil
}
