package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// Catalog + per-student state
		&types.Task{},
		&types.TaskSchedule{},
		&types.Submission{},
		&types.ExtensionRequest{},

		// Background work
		&types.JobRun{},
		&types.JobLease{},
	); err != nil {
		return err
	}
	if db.Dialector.Name() == "postgres" {
		return EnsurePostgresConstraints(db)
	}
	return nil
}

// EnsurePostgresConstraints adds the task foreign keys to tables created
// before they existed, plus the partial indexes the time-driven jobs scan.
func EnsurePostgresConstraints(db *gorm.DB) error {
	m := db.Migrator()
	for _, fk := range []struct {
		model any
		name  string
	}{
		{&types.TaskSchedule{}, "Task"},
		{&types.Submission{}, "Task"},
	} {
		if m.HasConstraint(fk.model, fk.name) {
			continue
		}
		if err := m.CreateConstraint(fk.model, fk.name); err != nil {
			return fmt.Errorf("create fk %T.%s: %w", fk.model, fk.name, err)
		}
	}

	stmts := []struct {
		name string
		sql  string
	}{
		{"idx_task_schedule_unlock_due", `
			CREATE INDEX IF NOT EXISTS idx_task_schedule_unlock_due
			ON task_schedule (unlock_date)
			WHERE is_unlocked = false;`},
		{"idx_task_schedule_overdue", `
			CREATE INDEX IF NOT EXISTS idx_task_schedule_overdue
			ON task_schedule (deadline, id)
			WHERE is_unlocked = true AND is_submitted = false;`},
		{"idx_job_run_claimable", `
			CREATE INDEX IF NOT EXISTS idx_job_run_claimable
			ON job_run (created_at)
			WHERE status IN ('queued', 'failed');`},
	}
	for _, st := range stmts {
		if err := db.Exec(st.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return nil
}
