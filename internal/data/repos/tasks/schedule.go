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

type ScheduleRepo interface {
	CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.TaskSchedule) (int64, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TaskSchedule, error)
	GetByStudentTask(dbc dbctx.Context, studentID, taskID uuid.UUID) (*types.TaskSchedule, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.TaskSchedule, error)
	LockByStudentTask(dbc dbctx.Context, studentID, taskID uuid.UUID) (*types.TaskSchedule, error)
	ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.TaskSchedule, error)
	ListTaskIDsForStudent(dbc dbctx.Context, studentID uuid.UUID, taskIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	ListDueForUnlock(dbc dbctx.Context, today time.Time, catchUp bool) ([]*types.TaskSchedule, error)
	ListOverdueUndelayedPage(dbc dbctx.Context, now time.Time, afterID uuid.UUID, limit int) ([]*types.TaskSchedule, error)
	ListOverduePage(dbc dbctx.Context, now time.Time, afterID uuid.UUID, limit int) ([]*types.TaskSchedule, error)
	UnlockLockedForWeek(dbc dbctx.Context, studentID uuid.UUID, domain string, weekNo int) (int64, error)
	HasSubmittedForWeek(dbc dbctx.Context, studentID uuid.UUID, domain string, weekNo int) (bool, error)
	CountForDomain(dbc dbctx.Context, studentID uuid.UUID, domain string) (total int64, submitted int64, err error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type scheduleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduleRepo(db *gorm.DB, baseLog *logger.Logger) ScheduleRepo {
	return &scheduleRepo{
		db:  db,
		log: baseLog.With("repo", "ScheduleRepo"),
	}
}

// CreateIgnoreDuplicates inserts rows in one statement, skipping any
// (student_id, task_id) pair that already exists. Returns rows inserted.
func (r *scheduleRepo) CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.TaskSchedule) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "task_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *scheduleRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TaskSchedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return r.first(transaction.WithContext(dbc.Ctx).Preload("Task").Where("id = ?", id), id != uuid.Nil)
}

func (r *scheduleRepo) GetByStudentTask(dbc dbctx.Context, studentID, taskID uuid.UUID) (*types.TaskSchedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Preload("Task").
		Where("student_id = ? AND task_id = ?", studentID, taskID)
	return r.first(q, studentID != uuid.Nil && taskID != uuid.Nil)
}

func (r *scheduleRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.TaskSchedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id)
	return r.first(q, id != uuid.Nil)
}

func (r *scheduleRepo) LockByStudentTask(dbc dbctx.Context, studentID, taskID uuid.UUID) (*types.TaskSchedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id = ? AND task_id = ?", studentID, taskID)
	return r.first(q, studentID != uuid.Nil && taskID != uuid.Nil)
}

func (r *scheduleRepo) first(q *gorm.DB, ok bool) (*types.TaskSchedule, error) {
	if !ok {
		return nil, nil
	}
	var row types.TaskSchedule
	if err := q.Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *scheduleRepo) ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.TaskSchedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.TaskSchedule
	if studentID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Task").
		Where("student_id = ?", studentID).
		Order("unlock_date ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scheduleRepo) ListTaskIDsForStudent(dbc dbctx.Context, studentID uuid.UUID, taskIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := map[uuid.UUID]bool{}
	if studentID == uuid.Nil || len(taskIDs) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.TaskSchedule{}).
		Where("student_id = ? AND task_id IN ?", studentID, taskIDs).
		Pluck("task_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// ListDueForUnlock returns locked schedules whose unlock date is today, or
// any date up to today when catchUp is set. today is a civil date (midnight
// UTC).
func (r *scheduleRepo) ListDueForUnlock(dbc dbctx.Context, today time.Time, catchUp bool) ([]*types.TaskSchedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	tomorrow := today.AddDate(0, 0, 1)
	q := transaction.WithContext(dbc.Ctx).
		Preload("Task").
		Where("is_unlocked = ?", false).
		Where("unlock_date < ?", tomorrow)
	if !catchUp {
		q = q.Where("unlock_date >= ?", today)
	}
	var out []*types.TaskSchedule
	if err := q.Order("unlock_date ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListOverdueUndelayedPage pages (id ascending) over unlocked, unsubmitted,
// not yet delayed schedules whose deadline is before now.
func (r *scheduleRepo) ListOverdueUndelayedPage(dbc dbctx.Context, now time.Time, afterID uuid.UUID, limit int) ([]*types.TaskSchedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("is_delayed = ?", false)
	return r.overduePage(q, now, afterID, limit)
}

// ListOverduePage pages (id ascending) over unlocked, unsubmitted schedules
// whose deadline is before now, delayed or not.
func (r *scheduleRepo) ListOverduePage(dbc dbctx.Context, now time.Time, afterID uuid.UUID, limit int) ([]*types.TaskSchedule, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return r.overduePage(transaction.WithContext(dbc.Ctx), now, afterID, limit)
}

func (r *scheduleRepo) overduePage(q *gorm.DB, now time.Time, afterID uuid.UUID, limit int) ([]*types.TaskSchedule, error) {
	if limit <= 0 {
		limit = 100
	}
	q = q.Preload("Task").
		Where("is_unlocked = ? AND is_submitted = ?", true, false).
		Where("deadline < ?", now.UTC())
	if afterID != uuid.Nil {
		q = q.Where("id > ?", afterID)
	}
	var out []*types.TaskSchedule
	if err := q.Order("id ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UnlockLockedForWeek unlocks the student's locked schedules of active tasks
// at (domain, weekNo). Already unlocked rows are untouched, so re-running is
// safe.
func (r *scheduleRepo) UnlockLockedForWeek(dbc dbctx.Context, studentID uuid.UUID, domain string, weekNo int) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if studentID == uuid.Nil || domain == "" || weekNo <= 0 {
		return 0, nil
	}
	tx := transaction.WithContext(dbc.Ctx)
	taskIDs := tx.Model(&types.Task{}).
		Select("id").
		Where("domain = ? AND week_no = ? AND active = ?", domain, weekNo, true)
	res := tx.Model(&types.TaskSchedule{}).
		Where("student_id = ? AND is_unlocked = ?", studentID, false).
		Where("task_id IN (?)", taskIDs).
		Updates(map[string]interface{}{
			"is_unlocked": true,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *scheduleRepo) HasSubmittedForWeek(dbc dbctx.Context, studentID uuid.UUID, domain string, weekNo int) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if studentID == uuid.Nil || domain == "" || weekNo <= 0 {
		return false, nil
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.TaskSchedule{}).
		Joins("JOIN tasks ON tasks.id = task_schedule.task_id").
		Where("task_schedule.student_id = ? AND task_schedule.is_submitted = ?", studentID, true).
		Where("tasks.domain = ? AND tasks.week_no = ?", domain, weekNo).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountForDomain counts the student's schedules for tasks of domain and how
// many of them are submitted.
func (r *scheduleRepo) CountForDomain(dbc dbctx.Context, studentID uuid.UUID, domain string) (int64, int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if studentID == uuid.Nil || domain == "" {
		return 0, 0, nil
	}
	var row struct {
		Total     int64
		Submitted int64
	}
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.TaskSchedule{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN task_schedule.is_submitted THEN 1 ELSE 0 END), 0) AS submitted").
		Joins("JOIN tasks ON tasks.id = task_schedule.task_id").
		Where("task_schedule.student_id = ? AND tasks.domain = ?", studentID, domain).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.Submitted, nil
}

func (r *scheduleRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.TaskSchedule{}).
		Where("id = ?", id).
		Updates(updates).Error
}
