package task_created

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/clients/students"
	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
	jobrt "github.com/rishiwork16-sys/skilledUp-Website/internal/jobs/runtime"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

type fakeDirectory struct {
	ids []uuid.UUID
	err error
}

func (f *fakeDirectory) GetStudent(context.Context, uuid.UUID) (*students.Student, error) {
	return nil, students.ErrStudentNotFound
}

func (f *fakeDirectory) ActiveStudentsByDomain(context.Context, string) ([]uuid.UUID, error) {
	return f.ids, f.err
}

type fakeInitializer struct {
	mu      sync.Mutex
	calls   map[uuid.UUID]string
	failFor uuid.UUID
}

func (f *fakeInitializer) InitializeSchedules(_ context.Context, studentID uuid.UUID, domain string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[uuid.UUID]string{}
	}
	f.calls[studentID] = domain
	if studentID == f.failFor {
		return 0, errors.New("db down")
	}
	return 1, nil
}

func jobContext(t *testing.T, payload map[string]any) *jobrt.Context {
	t.Helper()
	raw, _ := json.Marshal(payload)
	return jobrt.NewContext(context.Background(), nil, &types.JobRun{JobType: "task_created", Payload: datatypes.JSON(raw)}, nil)
}

func TestRun_FansOutToActiveStudents(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	initer := &fakeInitializer{}
	p := New(logger.Nop(), &fakeDirectory{ids: ids}, initer, 2)

	jc := jobContext(t, map[string]any{"task_id": uuid.New().String(), "domain": "Web Dev"})
	if err := p.Run(jc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(initer.calls) != 3 {
		t.Fatalf("initialized: want=3 got=%d", len(initer.calls))
	}
	for _, id := range ids {
		if initer.calls[id] != "Web Dev" {
			t.Fatalf("student %s domain: got=%q", id, initer.calls[id])
		}
	}
	if jc.Job.Status != types.JobStatusSucceeded {
		t.Fatalf("status: want=%s got=%s", types.JobStatusSucceeded, jc.Job.Status)
	}
	var summary map[string]any
	_ = json.Unmarshal(jc.Job.Result, &summary)
	if summary["created"].(float64) != 3 {
		t.Fatalf("summary: got=%v", summary)
	}
}

func TestRun_PartialFailureIsRetried(t *testing.T) {
	bad := uuid.New()
	initer := &fakeInitializer{failFor: bad}
	p := New(logger.Nop(), &fakeDirectory{ids: []uuid.UUID{uuid.New(), bad}}, initer, 4)
	err := p.Run(jobContext(t, map[string]any{"domain": "Web Dev"}))
	if err == nil {
		t.Fatalf("partial failure should return an error so the job is retried")
	}
	if len(initer.calls) != 2 {
		t.Fatalf("other students still initialized: got=%d", len(initer.calls))
	}
}

func TestRun_MissingDomainFails(t *testing.T) {
	p := New(logger.Nop(), &fakeDirectory{}, &fakeInitializer{}, 1)
	jc := jobContext(t, map[string]any{})
	if err := p.Run(jc); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if jc.Job.Status != types.JobStatusFailed {
		t.Fatalf("status: want=failed got=%s", jc.Job.Status)
	}
}

func TestRun_DirectoryError(t *testing.T) {
	p := New(logger.Nop(), &fakeDirectory{err: errors.New("unreachable")}, &fakeInitializer{}, 1)
	if err := p.Run(jobContext(t, map[string]any{"domain": "x"})); err == nil {
		t.Fatalf("directory error should propagate")
	}
}
