package task_created

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	jobrt "github.com/rishiwork16-sys/skilledUp-Website/internal/jobs/runtime"
)

// Run initializes schedules for every active student of the task's domain.
// Initialization skips existing schedules, so a retried run only fills the
// gaps left by students that failed before.
func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}
	domain := jc.PayloadString("domain")
	taskID, _ := jc.PayloadUUID("task_id")
	if domain == "" {
		jc.Fail("validate", fmt.Errorf("payload missing domain"))
		return nil
	}

	ids, err := p.students.ActiveStudentsByDomain(jc.Ctx, domain)
	if err != nil {
		return fmt.Errorf("list active students: %w", err)
	}

	var created, failed atomic.Int64
	g, gctx := errgroup.WithContext(jc.Ctx)
	g.SetLimit(p.concurrency)
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		studentID := id
		g.Go(func() error {
			n, err := p.schedules.InitializeSchedules(gctx, studentID, domain)
			if err != nil {
				failed.Add(1)
				p.log.Warn("Schedule initialization failed", "student_id", studentID, "domain", domain, "error", err)
				return nil
			}
			created.Add(int64(n))
			return nil
		})
	}
	_ = g.Wait()
	jc.Heartbeat()

	summary := map[string]any{
		"task_id":  taskID,
		"domain":   domain,
		"students": len(ids),
		"created":  created.Load(),
		"failed":   failed.Load(),
	}
	if failed.Load() > 0 {
		return fmt.Errorf("%d of %d students failed", failed.Load(), len(ids))
	}
	p.log.Info("TaskCreated fan-out finished", "task_id", taskID, "domain", domain, "students", len(ids), "created", created.Load())
	jc.Succeed(summary)
	return nil
}
