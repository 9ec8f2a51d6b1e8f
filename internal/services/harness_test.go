package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos/testutil"
	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type notifyCall struct {
	kind  string
	sched *types.TaskSchedule
	req   *types.ExtensionRequest
	task  *types.Task
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (f *fakeNotifier) record(c notifyCall) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.err
}

func (f *fakeNotifier) TaskUnlocked(_ context.Context, s *types.TaskSchedule) error {
	return f.record(notifyCall{kind: "unlocked", sched: s})
}

func (f *fakeNotifier) TaskDelayed(_ context.Context, s *types.TaskSchedule) error {
	return f.record(notifyCall{kind: "delayed", sched: s})
}

func (f *fakeNotifier) OverdueReminder(_ context.Context, s *types.TaskSchedule, _ int) error {
	return f.record(notifyCall{kind: "reminder", sched: s})
}

func (f *fakeNotifier) ExtensionReviewed(_ context.Context, r *types.ExtensionRequest, s *types.TaskSchedule, t *types.Task) error {
	return f.record(notifyCall{kind: "extension", sched: s, req: r, task: t})
}

func (f *fakeNotifier) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

var errSendFailed = errors.New("send failed")

type harness struct {
	db          *gorm.DB
	log         *logger.Logger
	clock       *clock
	cal         tasks.Calendar
	tasks       repos.TaskRepo
	schedules   repos.ScheduleRepo
	submissions repos.SubmissionRepo
	extensions  repos.ExtensionRepo
	scheduleAgg domainagg.ScheduleAggregate
	extAgg      domainagg.ExtensionAggregate
	notifier    *fakeNotifier
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	h := &harness{
		db:          db,
		log:         log,
		clock:       &clock{t: now},
		cal:         tasks.NewCalendar(time.UTC),
		tasks:       repos.NewTaskRepo(db, log),
		schedules:   repos.NewScheduleRepo(db, log),
		submissions: repos.NewSubmissionRepo(db, log),
		extensions:  repos.NewExtensionRepo(db, log),
		notifier:    &fakeNotifier{},
	}
	base := aggregates.BaseDeps{DB: db, Log: log, Now: h.clock.Now}
	h.scheduleAgg = aggregates.NewScheduleAggregate(aggregates.ScheduleAggregateDeps{
		Base:        base,
		Tasks:       h.tasks,
		Schedules:   h.schedules,
		Submissions: h.submissions,
		Calendar:    h.cal,
	})
	h.extAgg = aggregates.NewExtensionAggregate(aggregates.ExtensionAggregateDeps{
		Base:       base,
		Extensions: h.extensions,
		Schedules:  h.schedules,
		Calendar:   h.cal,
	})
	return h
}

func (h *harness) engine() ScheduleEngine {
	return NewScheduleEngine(h.db, h.log, h.tasks, h.schedules, h.scheduleAgg, nil, h.cal, h.clock.Now)
}

func (h *harness) reload(t *testing.T, id uuid.UUID) *types.TaskSchedule {
	t.Helper()
	s, err := h.schedules.GetByID(dbctx.Context{Ctx: context.Background()}, id)
	if err != nil || s == nil {
		t.Fatalf("reload schedule %s: %v", id, err)
	}
	return s
}

func (h *harness) setSubmitted(t *testing.T, id uuid.UUID) {
	t.Helper()
	if err := h.db.Model(&types.TaskSchedule{}).Where("id = ?", id).Update("is_submitted", true).Error; err != nil {
		t.Fatalf("mark submitted: %v", err)
	}
}
