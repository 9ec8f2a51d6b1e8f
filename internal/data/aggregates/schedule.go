package aggregates

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
)

const (
	msgTaskNotFound       = "Task not found"
	msgScheduleNotFound   = "Task schedule not found"
	msgSubmissionNotFound = "Submission not found"
)

type ScheduleAggregateDeps struct {
	Base BaseDeps

	Tasks       repos.TaskRepo
	Schedules   repos.ScheduleRepo
	Submissions repos.SubmissionRepo
	Calendar    tasks.Calendar
}

type scheduleAggregate struct {
	deps ScheduleAggregateDeps
}

func NewScheduleAggregate(deps ScheduleAggregateDeps) domainagg.ScheduleAggregate {
	deps.Base = deps.Base.withDefaults()
	return &scheduleAggregate{deps: deps}
}

func (a *scheduleAggregate) Contract() domainagg.Contract {
	return domainagg.ScheduleAggregateContract
}

func (a *scheduleAggregate) configured(op string) error {
	if a.deps.Tasks == nil || a.deps.Schedules == nil || a.deps.Submissions == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "schedule aggregate repos not configured", nil)
	}
	return nil
}

func (a *scheduleAggregate) Submit(ctx context.Context, in domainagg.SubmitInput) (domainagg.SubmitResult, error) {
	const op = "Tasks.Schedule.Submit"
	var out domainagg.SubmitResult
	if in.StudentID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing student_id", nil)
	}
	if in.TaskID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing task_id", nil)
	}
	if err := a.configured(op); err != nil {
		return out, err
	}
	submittedAt := in.SubmittedAt.UTC()
	if in.SubmittedAt.IsZero() {
		submittedAt = a.deps.Base.now()
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		task, err := a.deps.Tasks.GetByID(dbc, in.TaskID)
		if err != nil {
			return err
		}
		if task == nil {
			return notFound(op, msgTaskNotFound)
		}

		sched, err := a.deps.Schedules.LockByStudentTask(dbc, in.StudentID, in.TaskID)
		if err != nil {
			return err
		}
		if sched == nil {
			return notFound(op, msgScheduleNotFound)
		}
		if err := sched.Submit(); err != nil {
			return invalidState(op, err.Error(), err)
		}

		sub := tasks.NewSubmission(task, in.StudentID, in.SubmissionFileURL, submittedAt)
		if _, err := a.deps.Submissions.Create(dbc, sub); err != nil {
			return err
		}

		ok, err := a.deps.Base.Guard.Schedule(dbc, sched.ID,
			ScheduleState{Unlocked: is(true), Submitted: is(false)},
			map[string]any{"is_submitted": true, "updated_at": submittedAt},
		)
		if err != nil {
			return err
		}
		if !ok {
			return invalidState(op, tasks.ErrAlreadySubmitted.Error(), tasks.ErrAlreadySubmitted)
		}

		n, err := a.deps.Schedules.UnlockLockedForWeek(dbc, in.StudentID, task.Domain, task.WeekNo+1)
		if err != nil {
			return err
		}

		sched.Task = task
		out = domainagg.SubmitResult{
			Submission:   sub,
			Schedule:     sched,
			Task:         task,
			UnlockedNext: n,
		}
		return nil
	})
	return out, err
}

func (a *scheduleAggregate) UnlockNext(ctx context.Context, in domainagg.UnlockNextInput) (domainagg.UnlockNextResult, error) {
	const op = "Tasks.Schedule.UnlockNext"
	var out domainagg.UnlockNextResult
	if in.StudentID == uuid.Nil || in.Domain == "" || in.WeekNo <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "student_id, domain and week_no are required", nil)
	}
	if err := a.configured(op); err != nil {
		return out, err
	}
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		n, err := a.deps.Schedules.UnlockLockedForWeek(dbc, in.StudentID, in.Domain, in.WeekNo+1)
		if err != nil {
			return err
		}
		out.Unlocked = n
		return nil
	})
	return out, err
}

func (a *scheduleAggregate) Unlock(ctx context.Context, in domainagg.UnlockInput) (domainagg.UnlockResult, error) {
	const op = "Tasks.Schedule.Unlock"
	var out domainagg.UnlockResult
	if in.ScheduleID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing schedule_id", nil)
	}
	if err := a.configured(op); err != nil {
		return out, err
	}
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		sched, err := a.deps.Schedules.LockByID(dbc, in.ScheduleID)
		if err != nil {
			return err
		}
		if sched == nil {
			return notFound(op, msgScheduleNotFound)
		}
		task, err := a.deps.Tasks.GetByID(dbc, sched.TaskID)
		if err != nil {
			return err
		}
		if task == nil {
			return notFound(op, msgTaskNotFound)
		}
		sched.Task = task
		out.Schedule = sched

		if sched.State() != tasks.StateLocked {
			return nil
		}
		if task.WeekNo > 1 {
			ok, err := a.deps.Schedules.HasSubmittedForWeek(dbc, sched.StudentID, task.Domain, task.WeekNo-1)
			if err != nil {
				return err
			}
			if !ok {
				out.Blocked = true
				return nil
			}
		}

		sched.Unlock()
		changed, err := a.deps.Base.Guard.Schedule(dbc, sched.ID,
			ScheduleState{Unlocked: is(false)},
			map[string]any{"is_unlocked": true, "updated_at": a.deps.Base.now()},
		)
		if err != nil {
			return err
		}
		out.Changed = changed
		return nil
	})
	return out, err
}

func (a *scheduleAggregate) MarkDelayed(ctx context.Context, in domainagg.MarkDelayedInput) (domainagg.MarkDelayedResult, error) {
	const op = "Tasks.Schedule.MarkDelayed"
	var out domainagg.MarkDelayedResult
	if in.ScheduleID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing schedule_id", nil)
	}
	if err := a.configured(op); err != nil {
		return out, err
	}
	now := in.Now.UTC()
	if in.Now.IsZero() {
		now = a.deps.Base.now()
	}
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		sched, err := a.deps.Schedules.LockByID(dbc, in.ScheduleID)
		if err != nil {
			return err
		}
		if sched == nil {
			return notFound(op, msgScheduleNotFound)
		}
		out.Schedule = sched

		// Submitted or extended since it was listed: nothing to do.
		if err := sched.MarkDelayed(now); err != nil {
			if errors.Is(err, tasks.ErrInvalidTransition) {
				return nil
			}
			return err
		}
		changed, err := a.deps.Base.Guard.Schedule(dbc, sched.ID,
			ScheduleState{Unlocked: is(true), Submitted: is(false), Delayed: is(false)},
			map[string]any{"is_delayed": true, "updated_at": now},
		)
		if err != nil {
			return err
		}
		out.Changed = changed
		if changed {
			task, err := a.deps.Tasks.GetByID(dbc, sched.TaskID)
			if err != nil {
				return err
			}
			sched.Task = task
		}
		return nil
	})
	return out, err
}

func (a *scheduleAggregate) ForceOverdue(ctx context.Context, in domainagg.ForceOverdueInput) (*tasks.TaskSchedule, error) {
	const op = "Tasks.Schedule.ForceOverdue"
	if in.StudentID == uuid.Nil || in.TaskID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "student_id and task_id are required", nil)
	}
	if err := a.configured(op); err != nil {
		return nil, err
	}
	now := in.Now.UTC()
	if in.Now.IsZero() {
		now = a.deps.Base.now()
	}
	var out *tasks.TaskSchedule
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		sched, err := a.deps.Schedules.LockByStudentTask(dbc, in.StudentID, in.TaskID)
		if err != nil {
			return err
		}
		if sched == nil {
			return notFound(op, msgScheduleNotFound)
		}
		unlock, deadline := a.deps.Calendar.OverdueWindow(now)
		sched.ForceOverdue(unlock, deadline)
		if err := a.deps.Schedules.UpdateFields(dbc, sched.ID, map[string]interface{}{
			"unlock_date":  sched.UnlockDate,
			"deadline":     sched.Deadline,
			"is_unlocked":  sched.IsUnlocked,
			"is_submitted": sched.IsSubmitted,
			"is_delayed":   sched.IsDelayed,
			"updated_at":   now,
		}); err != nil {
			return err
		}
		out = sched
		return nil
	})
	return out, err
}

func (a *scheduleAggregate) WithdrawSubmission(ctx context.Context, submissionID uuid.UUID) (*tasks.Submission, error) {
	const op = "Tasks.Schedule.WithdrawSubmission"
	if submissionID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing submission_id", nil)
	}
	if err := a.configured(op); err != nil {
		return nil, err
	}
	var out *tasks.Submission
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		sub, err := a.deps.Submissions.LockByID(dbc, submissionID)
		if err != nil {
			return err
		}
		if sub == nil {
			return notFound(op, msgSubmissionNotFound)
		}
		sched, err := a.deps.Schedules.LockByStudentTask(dbc, sub.StudentID, sub.TaskID)
		if err != nil {
			return err
		}
		if sched == nil {
			return notFound(op, msgScheduleNotFound)
		}
		if sched.Reopen() {
			if err := a.deps.Schedules.UpdateFields(dbc, sched.ID, map[string]interface{}{
				"is_submitted": false,
			}); err != nil {
				return err
			}
		}
		if err := a.deps.Submissions.Delete(dbc, sub.ID); err != nil {
			return err
		}
		out = sub
		return nil
	})
	return out, err
}
