package aggregates

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
)

// Guard applies conditional single-row writes. An update lands only while
// the row still holds the expected state; callers learn whether it did and
// decide what a lost race means for them.
type Guard struct {
	db *gorm.DB
}

func NewGuard(db *gorm.DB) Guard { return Guard{db: db} }

// ScheduleState lists the flags a task_schedule row must still hold. Nil
// fields are not checked.
type ScheduleState struct {
	Unlocked  *bool
	Submitted *bool
	Delayed   *bool
}

func is(v bool) *bool { return &v }

func (s ScheduleState) apply(q *gorm.DB) *gorm.DB {
	for col, want := range map[string]*bool{
		"is_unlocked":  s.Unlocked,
		"is_submitted": s.Submitted,
		"is_delayed":   s.Delayed,
	} {
		if want != nil {
			q = q.Where(col+" = ?", *want)
		}
	}
	return q
}

// Schedule updates the schedule row id while it matches expect.
func (g Guard) Schedule(dbc dbctx.Context, id uuid.UUID, expect ScheduleState, set map[string]any) (bool, error) {
	return g.swap(dbc, &tasks.TaskSchedule{}, id, set, expect.apply)
}

// Extension updates a request only while it is still in status from.
func (g Guard) Extension(dbc dbctx.Context, id uuid.UUID, from tasks.ExtensionStatus, set map[string]any) (bool, error) {
	return g.swap(dbc, &tasks.ExtensionRequest{}, id, set, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", string(from))
	})
}

func (g Guard) swap(dbc dbctx.Context, model any, id uuid.UUID, set map[string]any, where func(*gorm.DB) *gorm.DB) (bool, error) {
	if id == uuid.Nil {
		return false, validationErr("guarded write needs a row id")
	}
	if len(set) == 0 {
		return false, invariantErr("guarded write has nothing to set")
	}
	db := dbc.DB(g.db)
	if db == nil {
		return false, validationErr("missing db transaction context")
	}
	res := where(db.Model(model).Where("id = ?", id)).Updates(set)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
