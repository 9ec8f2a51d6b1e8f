package jobs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

// JobRunRepo is the durable queue behind the job_run worker. Rows are
// inserted inside the write that needs them and claimed one at a time.
type JobRunRepo interface {
	Create(dbc dbctx.Context, jobs []*types.JobRun) ([]*types.JobRun, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.JobRun, error)
	ClaimNextRunnable(dbc dbctx.Context, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.JobRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Heartbeat(dbc dbctx.Context, id uuid.UUID) error
	ExistsRunnable(dbc dbctx.Context, jobType string, entityType string, entityID *uuid.UUID) (bool, error)
}

type jobRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewJobRunRepo(db *gorm.DB, baseLog *logger.Logger) JobRunRepo {
	return &jobRunRepo{
		db:  db,
		log: baseLog.With("repo", "JobRunRepo"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *jobRunRepo) conn(dbc dbctx.Context) *gorm.DB { return dbc.DB(r.db) }

func (r *jobRunRepo) Create(dbc dbctx.Context, jobs []*types.JobRun) ([]*types.JobRun, error) {
	if len(jobs) == 0 {
		return []*types.JobRun{}, nil
	}
	if err := r.conn(dbc).Create(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRunRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.JobRun, error) {
	var out []*types.JobRun
	if len(ids) == 0 {
		return out, nil
	}
	err := r.conn(dbc).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// runnable matches rows a worker may take: queued, failed with attempts
// left once the retry delay has passed, or running with a stale heartbeat
// (the worker that held it is presumed dead).
func runnable(maxAttempts int, retryCutoff, staleCutoff time.Time) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		retry := q.Session(&gorm.Session{NewDB: true}).
			Where("status = ? AND attempts < ?", types.JobStatusFailed, maxAttempts).
			Where("(last_error_at IS NULL OR last_error_at < ?)", retryCutoff)
		stale := q.Session(&gorm.Session{NewDB: true}).
			Where("status = ? AND heartbeat_at IS NOT NULL AND heartbeat_at < ?", types.JobStatusRunning, staleCutoff)
		return q.Where(
			q.Session(&gorm.Session{NewDB: true}).
				Where("status = ?", types.JobStatusQueued).
				Or(retry).
				Or(stale),
		)
	}
}

// ClaimNextRunnable marks the oldest runnable row running and returns it,
// or nil when the queue is idle. SKIP LOCKED keeps concurrent workers on
// Postgres off the same row; sqlite serializes writers anyway.
func (r *jobRunRepo) ClaimNextRunnable(dbc dbctx.Context, maxAttempts int, retryDelay time.Duration, staleRunning time.Duration) (*types.JobRun, error) {
	now := r.now()
	var claimed *types.JobRun
	err := r.conn(dbc).Transaction(func(tx *gorm.DB) error {
		var job types.JobRun
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Scopes(runnable(maxAttempts, now.Add(-retryDelay), now.Add(-staleRunning))).
			Order("created_at ASC").
			First(&job).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil
		case err != nil:
			return err
		}
		if err := tx.Model(&types.JobRun{}).Where("id = ?", job.ID).Updates(map[string]interface{}{
			"status":       types.JobStatusRunning,
			"attempts":     gorm.Expr("attempts + 1"),
			"locked_at":    now,
			"heartbeat_at": now,
			"updated_at":   now,
		}).Error; err != nil {
			return err
		}
		job.Status = types.JobStatusRunning
		job.Attempts++
		job.LockedAt, job.HeartbeatAt = &now, &now
		claimed = &job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *jobRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	set := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		set[k] = v
	}
	if _, ok := set["updated_at"]; !ok {
		set["updated_at"] = r.now()
	}
	return r.conn(dbc).Model(&types.JobRun{}).Where("id = ?", id).Updates(set).Error
}

// Heartbeat only touches rows still running, so a job reclaimed elsewhere
// is not kept alive by its old owner.
func (r *jobRunRepo) Heartbeat(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	now := r.now()
	return r.conn(dbc).Model(&types.JobRun{}).
		Where("id = ? AND status = ?", id, types.JobStatusRunning).
		Updates(map[string]interface{}{"heartbeat_at": now, "updated_at": now}).Error
}

// ExistsRunnable reports whether a queued or running job of jobType already
// covers the entity. Empty entityType or nil entityID widen the match.
func (r *jobRunRepo) ExistsRunnable(dbc dbctx.Context, jobType string, entityType string, entityID *uuid.UUID) (bool, error) {
	if jobType == "" {
		return false, nil
	}
	q := r.conn(dbc).Model(&types.JobRun{}).
		Where("job_type = ? AND status IN ?", jobType, []string{types.JobStatusQueued, types.JobStatusRunning})
	if entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}
	if entityID != nil && *entityID != uuid.Nil {
		q = q.Where("entity_id = ?", *entityID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
