package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos/testutil"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
)

func TestInitializeSchedules_MondayEnrollment(t *testing.T) {
	h := newHarness(t, time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()
	week1 := testutil.SeedTask(t, ctx, h.db, "Web Dev", 1)
	week2 := testutil.SeedTask(t, ctx, h.db, "Web Dev", 2)
	testutil.SeedTask(t, ctx, h.db, "Data", 1)
	student := uuid.New()

	n, err := h.engine().InitializeSchedules(ctx, student, "Web Dev")
	if err != nil {
		t.Fatalf("InitializeSchedules: %v", err)
	}
	if n != 2 {
		t.Fatalf("created: want=2 got=%d", n)
	}

	rows, err := h.engine().MySchedules(ctx, student)
	if err != nil {
		t.Fatalf("MySchedules: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("schedules: want=2 got=%d", len(rows))
	}
	for _, r := range rows {
		switch r.TaskID {
		case week1.ID:
			if want := testutil.Date(2025, 1, 6); !r.UnlockDate.Equal(want) {
				t.Fatalf("week1 unlock: want=%v got=%v", want, r.UnlockDate)
			}
			if want := time.Date(2025, 1, 12, 23, 59, 59, 0, time.UTC); !r.Deadline.Equal(want) {
				t.Fatalf("week1 deadline: want=%v got=%v", want, r.Deadline)
			}
			if !r.IsUnlocked {
				t.Fatalf("week1 must start unlocked")
			}
		case week2.ID:
			if want := testutil.Date(2025, 1, 13); !r.UnlockDate.Equal(want) {
				t.Fatalf("week2 unlock: want=%v got=%v", want, r.UnlockDate)
			}
			if r.IsUnlocked {
				t.Fatalf("week2 must start locked")
			}
		default:
			t.Fatalf("unexpected task %s", r.TaskID)
		}
		if r.Task == nil {
			t.Fatalf("task must be loaded for %s", r.ID)
		}
	}

	again, err := h.engine().InitializeSchedules(ctx, student, "Web Dev")
	if err != nil {
		t.Fatalf("second InitializeSchedules: %v", err)
	}
	if again != 0 {
		t.Fatalf("second run: want=0 got=%d", again)
	}
}

func TestInitializeSchedules_Validation(t *testing.T) {
	h := newHarness(t, time.Now())
	_, err := h.engine().InitializeSchedules(context.Background(), uuid.New(), "  ")
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("blank domain: want validation got=%v", err)
	}
}

func TestCompletionStats(t *testing.T) {
	h := newHarness(t, time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	student := uuid.New()
	unlock := testutil.Date(2025, 1, 6)
	deadline := time.Date(2025, 1, 12, 23, 59, 59, 0, time.UTC)

	var ids []uuid.UUID
	for week := 1; week <= 4; week++ {
		task := testutil.SeedTask(t, ctx, h.db, "web", week)
		s := testutil.SeedSchedule(t, ctx, h.db, student, task.ID, unlock, deadline, true)
		ids = append(ids, s.ID)
	}
	other := testutil.SeedTask(t, ctx, h.db, "data", 1)
	testutil.SeedSchedule(t, ctx, h.db, student, other.ID, unlock, deadline, true)

	for _, id := range ids[:3] {
		h.setSubmitted(t, id)
	}
	stats, err := h.engine().CompletionStats(ctx, student, "web")
	if err != nil {
		t.Fatalf("CompletionStats: %v", err)
	}
	if stats.TotalTasks != 4 || stats.CompletedTasks != 3 || stats.CompletionPercent != 75 || stats.MeetsMinimumRequirement {
		t.Fatalf("3/4: got=%+v", stats)
	}

	h.setSubmitted(t, ids[3])
	stats, err = h.engine().CompletionStats(ctx, student, "web")
	if err != nil {
		t.Fatalf("CompletionStats: %v", err)
	}
	if stats.CompletionPercent != 100 || !stats.MeetsMinimumRequirement {
		t.Fatalf("4/4: got=%+v", stats)
	}
}

func TestComputeCompletion(t *testing.T) {
	cases := []struct {
		total, done, pct int
		meets            bool
	}{
		{0, 0, 0, false},
		{20, 19, 95, true},
		{21, 19, 90, false},
		{3, 2, 66, false},
	}
	for _, c := range cases {
		got := ComputeCompletion(c.total, c.done)
		if got.CompletionPercent != c.pct || got.MeetsMinimumRequirement != c.meets {
			t.Fatalf("%d/%d: want=%d/%v got=%d/%v", c.done, c.total, c.pct, c.meets, got.CompletionPercent, got.MeetsMinimumRequirement)
		}
	}
}

func TestSimulateDelay(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	h := newHarness(t, now)
	ctx := context.Background()
	student := uuid.New()
	task := testutil.SeedTask(t, ctx, h.db, "web", 2)
	s := testutil.SeedSchedule(t, ctx, h.db, student, task.ID, testutil.Date(2025, 3, 17), time.Date(2025, 3, 23, 23, 59, 59, 0, time.UTC), false)

	if _, err := h.engine().SimulateDelay(ctx, student, task.ID); err != nil {
		t.Fatalf("SimulateDelay: %v", err)
	}
	got := h.reload(t, s.ID)
	if !got.IsUnlocked || got.IsSubmitted || !got.IsDelayed {
		t.Fatalf("flags: got unlocked=%v submitted=%v delayed=%v", got.IsUnlocked, got.IsSubmitted, got.IsDelayed)
	}
	if !got.Deadline.Before(now) {
		t.Fatalf("deadline must be in the past: got=%v", got.Deadline)
	}

	_, err := h.engine().SimulateDelay(ctx, student, uuid.New())
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("missing schedule: want not_found got=%v", err)
	}
}
