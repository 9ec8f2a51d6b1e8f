package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
)

const (
	msgRequestNotFound  = "Extension request not found"
	msgAlreadyProcessed = "Request is already processed"
)

type ExtensionAggregateDeps struct {
	Base BaseDeps

	Extensions repos.ExtensionRepo
	Schedules  repos.ScheduleRepo
	Calendar   tasks.Calendar
}

type extensionAggregate struct {
	deps ExtensionAggregateDeps
}

func NewExtensionAggregate(deps ExtensionAggregateDeps) domainagg.ExtensionAggregate {
	deps.Base = deps.Base.withDefaults()
	return &extensionAggregate{deps: deps}
}

func (a *extensionAggregate) Contract() domainagg.Contract {
	return domainagg.ExtensionAggregateContract
}

func (a *extensionAggregate) Review(ctx context.Context, in domainagg.ReviewExtensionInput) (domainagg.ReviewExtensionResult, error) {
	const op = "Tasks.Extension.Review"
	var out domainagg.ReviewExtensionResult
	if in.RequestID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing request_id", nil)
	}
	if a.deps.Extensions == nil || a.deps.Schedules == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "extension aggregate repos not configured", nil)
	}
	reviewedAt := in.ReviewedAt.UTC()
	if in.ReviewedAt.IsZero() {
		reviewedAt = a.deps.Base.now()
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		req, err := a.deps.Extensions.LockByID(dbc, in.RequestID)
		if err != nil {
			return err
		}
		if req == nil {
			return notFound(op, msgRequestNotFound)
		}
		if !req.IsPending() {
			return invalidState(op, msgAlreadyProcessed, nil)
		}

		status := tasks.ExtensionRejected
		if in.Approved {
			status = tasks.ExtensionApproved
			sched, err := a.deps.Schedules.LockByStudentTask(dbc, req.StudentID, req.TaskID)
			if err != nil {
				return err
			}
			if sched == nil {
				return notFound(op, msgScheduleNotFound)
			}
			if err := sched.ExtendDeadline(req.RequestedDays, reviewedAt, a.deps.Calendar.Loc); err != nil {
				return validationErr(err.Error())
			}
			if err := a.deps.Schedules.UpdateFields(dbc, sched.ID, map[string]interface{}{
				"deadline":   sched.Deadline,
				"is_delayed": sched.IsDelayed,
				"updated_at": reviewedAt,
			}); err != nil {
				return err
			}
			out.Schedule = sched
		}

		ok, err := a.deps.Base.Guard.Extension(dbc, req.ID, tasks.ExtensionPending,
			map[string]any{"status": status, "reviewed_at": reviewedAt, "updated_at": reviewedAt},
		)
		if err != nil {
			return err
		}
		if !ok {
			return invalidState(op, msgAlreadyProcessed, nil)
		}
		req.Status = status
		req.ReviewedAt = &reviewedAt
		out.Request = req
		return nil
	})
	return out, err
}
