package aggregates

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/jobs"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
)

type TaskAggregateDeps struct {
	Base BaseDeps

	Tasks   repos.TaskRepo
	JobRuns repos.JobRunRepo
}

type taskAggregate struct {
	deps TaskAggregateDeps
}

func NewTaskAggregate(deps TaskAggregateDeps) domainagg.TaskAggregate {
	deps.Base = deps.Base.withDefaults()
	return &taskAggregate{deps: deps}
}

func (a *taskAggregate) Contract() domainagg.Contract {
	return domainagg.TaskAggregateContract
}

func (a *taskAggregate) Create(ctx context.Context, task *tasks.Task) (domainagg.CreateTaskResult, error) {
	const op = "Tasks.Task.Create"
	var out domainagg.CreateTaskResult
	if task == nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing task", nil)
	}
	task.Domain = strings.TrimSpace(task.Domain)
	task.Title = strings.TrimSpace(task.Title)
	if task.Domain == "" || task.Title == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "domain and title are required", nil)
	}
	if task.WeekNo <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "weekNo must be positive", nil)
	}
	if a.deps.Tasks == nil || a.deps.JobRuns == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "task aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		if task.ID == uuid.Nil {
			task.ID = uuid.New()
		}
		if _, err := a.deps.Tasks.Create(dbc, task); err != nil {
			return err
		}
		out.Task = task
		if !task.Active {
			return nil
		}

		payload, err := json.Marshal(domainagg.TaskCreatedPayload{TaskID: task.ID, Domain: task.Domain})
		if err != nil {
			return err
		}
		job := &jobs.JobRun{
			JobType:    domainagg.JobTypeTaskCreated,
			EntityType: "task",
			EntityID:   &task.ID,
			Status:     jobs.StatusQueued,
			Payload:    datatypes.JSON(payload),
			Result:     datatypes.JSON([]byte("{}")),
		}
		if _, err := a.deps.JobRuns.Create(dbc, []*jobs.JobRun{job}); err != nil {
			return err
		}
		out.Job = job
		return nil
	})
	return out, err
}

func (a *taskAggregate) Delete(ctx context.Context, taskID uuid.UUID) error {
	const op = "Tasks.Task.Delete"
	if taskID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing task_id", nil)
	}
	if a.deps.Tasks == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "task aggregate repos not configured", nil)
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		task, err := a.deps.Tasks.GetByID(dbc, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return notFound(op, msgTaskNotFound)
		}
		return a.deps.Tasks.DeleteCascade(dbc, taskID)
	})
}
