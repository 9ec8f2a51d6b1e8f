package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/jobs"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
)

var TaskAggregateContract = Contract{
	Name:             "Tasks.TaskAggregate",
	Owns:             "tasks",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyTableRepoQueries,
	Notes:            "Creates tasks together with their TaskCreated outbox row; deletes tasks with dependents.",
}

// JobTypeTaskCreated is the outbox job that materializes schedules for every
// active student of the new task's domain.
const JobTypeTaskCreated = "task_created"

// TaskAggregate owns task rows whose writes fan out to other tables.
type TaskAggregate interface {
	Aggregate

	// Create inserts the task and, when it is active, enqueues a
	// TaskCreated job in the same transaction.
	Create(ctx context.Context, task *tasks.Task) (CreateTaskResult, error)

	// Delete removes the task with its schedules, submissions and
	// extension requests.
	Delete(ctx context.Context, taskID uuid.UUID) error
}

type CreateTaskResult struct {
	Task *tasks.Task
	Job  *jobs.JobRun
}

// TaskCreatedPayload is stored on the outbox row.
type TaskCreatedPayload struct {
	TaskID uuid.UUID `json:"task_id"`
	Domain string    `json:"domain"`
}
