package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/clients/notification"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/clients/students"
	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

var ErrNoRecipient = errors.New("student has no email address")

// StudentNotifier emails students about schedule changes. Every method is
// called after the state change committed, and callers treat errors as
// best-effort failures.
type StudentNotifier interface {
	TaskUnlocked(ctx context.Context, sched *types.TaskSchedule) error
	TaskDelayed(ctx context.Context, sched *types.TaskSchedule) error
	OverdueReminder(ctx context.Context, sched *types.TaskSchedule, everyDays int) error
	ExtensionReviewed(ctx context.Context, req *types.ExtensionRequest, sched *types.TaskSchedule, task *types.Task) error
}

type NotificationMetrics interface {
	IncNotification(kind, status string)
}

type studentNotifier struct {
	log       *logger.Logger
	students  students.Directory
	sender    notification.Sender
	templates *notification.Templates
	cal       tasks.Calendar
	metrics   NotificationMetrics
}

func NewStudentNotifier(
	baseLog *logger.Logger,
	dir students.Directory,
	sender notification.Sender,
	templates *notification.Templates,
	cal tasks.Calendar,
	metrics NotificationMetrics,
) StudentNotifier {
	return &studentNotifier{
		log:       baseLog.With("service", "StudentNotifier"),
		students:  dir,
		sender:    sender,
		templates: templates,
		cal:       tasks.NewCalendar(cal.Loc),
		metrics:   metrics,
	}
}

func (n *studentNotifier) formatDeadline(t time.Time) string {
	return t.In(n.cal.Loc).Format("Mon, 02 Jan 2006 15:04 MST")
}

func taskOf(sched *types.TaskSchedule) (*types.Task, error) {
	if sched == nil || sched.Task == nil {
		return nil, fmt.Errorf("schedule task not loaded")
	}
	return sched.Task, nil
}

func (n *studentNotifier) TaskUnlocked(ctx context.Context, sched *types.TaskSchedule) error {
	task, err := taskOf(sched)
	if err != nil {
		return err
	}
	return n.send(ctx, sched.StudentID, notification.TemplateTaskUnlocked, notification.TemplateData{
		TaskTitle: task.Title,
		WeekNo:    task.WeekNo,
		Deadline:  n.formatDeadline(sched.Deadline),
	})
}

func (n *studentNotifier) TaskDelayed(ctx context.Context, sched *types.TaskSchedule) error {
	task, err := taskOf(sched)
	if err != nil {
		return err
	}
	return n.send(ctx, sched.StudentID, notification.TemplateTaskDelayed, notification.TemplateData{
		TaskTitle: task.Title,
		WeekNo:    task.WeekNo,
		Deadline:  n.formatDeadline(sched.Deadline),
	})
}

func (n *studentNotifier) OverdueReminder(ctx context.Context, sched *types.TaskSchedule, everyDays int) error {
	task, err := taskOf(sched)
	if err != nil {
		return err
	}
	return n.send(ctx, sched.StudentID, notification.TemplateOverdueReminder, notification.TemplateData{
		TaskTitle:         task.Title,
		WeekNo:            task.WeekNo,
		Deadline:          n.formatDeadline(sched.Deadline),
		ReminderEveryDays: everyDays,
	})
}

func (n *studentNotifier) ExtensionReviewed(ctx context.Context, req *types.ExtensionRequest, sched *types.TaskSchedule, task *types.Task) error {
	if req == nil {
		return fmt.Errorf("nil extension request")
	}
	kind := notification.TemplateExtensionRejected
	if req.Status == types.ExtensionApproved {
		kind = notification.TemplateExtensionApproved
	}
	data := notification.TemplateData{Days: req.RequestedDays, TaskTitle: "your task"}
	if task != nil {
		data.TaskTitle = task.Title
		data.WeekNo = task.WeekNo
	}
	if sched != nil {
		data.Deadline = n.formatDeadline(sched.Deadline)
	}
	return n.send(ctx, req.StudentID, kind, data)
}

func (n *studentNotifier) send(ctx context.Context, studentID uuid.UUID, kind notification.TemplateKind, data notification.TemplateData) (err error) {
	defer func() {
		status := "sent"
		if err != nil {
			status = "failed"
		}
		if n.metrics != nil {
			n.metrics.IncNotification(string(kind), status)
		}
	}()

	st, err := n.students.GetStudent(ctx, studentID)
	if err != nil {
		return fmt.Errorf("lookup student %s: %w", studentID, err)
	}
	if st == nil || strings.TrimSpace(st.Email) == "" {
		return ErrNoRecipient
	}
	data.StudentName = st.Name
	subject, body, err := n.templates.Render(kind, data)
	if err != nil {
		return err
	}
	if err := n.sender.SendEmail(ctx, st.Email, subject, body); err != nil {
		return fmt.Errorf("send %s: %w", kind, err)
	}
	n.log.Debug("Notification sent", "kind", kind, "student_id", studentID)
	return nil
}
