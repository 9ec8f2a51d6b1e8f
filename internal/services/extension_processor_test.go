package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos/testutil"
	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
)

func (h *harness) extensionsSvc() ExtensionProcessor {
	return NewExtensionProcessor(h.db, h.log, h.extensions, h.tasks, h.extAgg, h.notifier, h.clock.Now)
}

func TestExtensionProcessor_ApproveExtendsDeadline(t *testing.T) {
	h := newHarness(t, time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	student := uuid.New()
	task := testutil.SeedTask(t, ctx, h.db, "web", 1)
	s := testutil.SeedSchedule(t, ctx, h.db, student, task.ID, testutil.Date(2024, 12, 26), time.Date(2025, 1, 1, 23, 59, 59, 0, time.UTC), true)
	svc := h.extensionsSvc()

	if _, err := svc.CreateRequest(ctx, ExtensionRequestInput{StudentID: student, TaskID: task.ID, RequestedDays: 0}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("zero days: want validation got=%v", err)
	}
	req, err := svc.CreateRequest(ctx, ExtensionRequestInput{StudentID: student, TaskID: task.ID, Reason: " sick ", RequestedDays: 5})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if req.Status != types.ExtensionPending || req.Reason != "sick" {
		t.Fatalf("created: got=%+v", req)
	}

	pending, err := svc.ListPending(ctx)
	if err != nil || len(pending) != 1 {
		t.Fatalf("ListPending: want=1 got=%d err=%v", len(pending), err)
	}

	h.notifier.err = errSendFailed
	out, err := svc.ReviewRequest(ctx, req.ID, true)
	if err != nil {
		t.Fatalf("ReviewRequest: %v", err)
	}
	if out.Status != types.ExtensionApproved {
		t.Fatalf("status: want=APPROVED got=%s", out.Status)
	}
	if want := time.Date(2025, 1, 6, 23, 59, 59, 0, time.UTC); !h.reload(t, s.ID).Deadline.Equal(want) {
		t.Fatalf("deadline: want=%v got=%v", want, h.reload(t, s.ID).Deadline)
	}
	if h.notifier.count("extension") != 1 || h.notifier.calls[0].task == nil {
		t.Fatalf("extension email must be attempted once with the task")
	}

	_, err = svc.ReviewRequest(ctx, req.ID, false)
	if !domainagg.IsCode(err, domainagg.CodeInvalidState) || domainagg.MessageOf(err) != "Request is already processed" {
		t.Fatalf("second review: got=%v", err)
	}

	mine, err := svc.ListByStudent(ctx, student)
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListByStudent: want=1 got=%d err=%v", len(mine), err)
	}
}

func TestExtensionProcessor_Reject(t *testing.T) {
	h := newHarness(t, time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	student := uuid.New()
	task := testutil.SeedTask(t, ctx, h.db, "web", 1)
	deadline := time.Date(2025, 1, 1, 23, 59, 59, 0, time.UTC)
	s := testutil.SeedSchedule(t, ctx, h.db, student, task.ID, testutil.Date(2024, 12, 26), deadline, true)
	req := testutil.SeedExtension(t, ctx, h.db, student, task.ID, 3)

	out, err := h.extensionsSvc().ReviewRequest(ctx, req.ID, false)
	if err != nil {
		t.Fatalf("ReviewRequest: %v", err)
	}
	if out.Status != types.ExtensionRejected || out.ReviewedAt == nil {
		t.Fatalf("rejected: got=%+v", out)
	}
	if !h.reload(t, s.ID).Deadline.Equal(deadline) {
		t.Fatalf("reject must not move the deadline")
	}
}
