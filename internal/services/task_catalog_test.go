package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos"
	types "github.com/rishiwork16-sys/skilledUp-Website/internal/domain"
	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
)

const bucketBase = "https://storage.googleapis.com/skilledup/"

type fakeFiles struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeFiles) Upload(_ context.Context, folder, filename string, _ io.Reader) (string, error) {
	return bucketBase + folder + "/" + filename, nil
}

func (f *fakeFiles) Delete(_ context.Context, rawURL string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, rawURL)
	f.mu.Unlock()
	return nil
}

func (f *fakeFiles) SignURL(_ context.Context, rawURL string) (string, error) {
	if !f.Owns(rawURL) {
		return rawURL, nil
	}
	return rawURL + "?X-Goog-Signature=abc", nil
}

func (f *fakeFiles) Owns(rawURL string) bool {
	return strings.HasPrefix(rawURL, bucketBase)
}

func newCatalog(t *testing.T, h *harness, files *fakeFiles) TaskCatalog {
	t.Helper()
	agg := aggregates.NewTaskAggregate(aggregates.TaskAggregateDeps{
		Base:    aggregates.BaseDeps{DB: h.db, Log: h.log, Now: h.clock.Now},
		Tasks:   h.tasks,
		JobRuns: repos.NewJobRunRepo(h.db, h.log),
	})
	return NewTaskCatalog(h.db, h.log, h.tasks, agg, files)
}

func strPtr(s string) *string { return &s }

func TestTaskCatalog_SignedURLsNeverOverwriteStored(t *testing.T) {
	h := newHarness(t, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
	files := &fakeFiles{}
	catalog := newCatalog(t, h, files)
	ctx := context.Background()

	stored := bucketBase + "tasks/brief.pdf"
	created, err := catalog.Create(ctx, TaskInput{
		Domain:      "web",
		WeekNo:      1,
		Title:       "Landing page",
		TaskFileURL: strPtr(stored),
		VideoURL:    strPtr("https://youtube.com/watch?v=1"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.Contains(created.TaskFileURL, "X-Goog-Signature") {
		t.Fatalf("task file url: want signed got=%q", created.TaskFileURL)
	}
	if created.VideoURL != "https://youtube.com/watch?v=1" {
		t.Fatalf("foreign url: want unchanged got=%q", created.VideoURL)
	}

	// Echo back what the client received; the signed rendition must be ignored.
	updated, err := catalog.Update(ctx, created.ID, TaskInput{
		Domain:      "web",
		WeekNo:      2,
		Title:       "Landing page v2",
		TaskFileURL: strPtr(created.TaskFileURL),
		VideoURL:    nil,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	raw, err := h.tasks.GetByID(dbctx.Context{Ctx: ctx}, created.ID)
	if err != nil || raw == nil {
		t.Fatalf("reload task: %v", err)
	}
	if raw.TaskFileURL != stored {
		t.Fatalf("stored task file: want=%q got=%q", stored, raw.TaskFileURL)
	}
	if raw.VideoURL != "" {
		t.Fatalf("nil video should clear: got=%q", raw.VideoURL)
	}
	if updated.WeekNo != 2 || updated.Title != "Landing page v2" {
		t.Fatalf("update fields: got week=%d title=%q", updated.WeekNo, updated.Title)
	}
}

func TestTaskCatalog_UpdateValidation(t *testing.T) {
	h := newHarness(t, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
	catalog := newCatalog(t, h, &fakeFiles{})
	ctx := context.Background()

	created, err := catalog.Create(ctx, TaskInput{Domain: "web", WeekNo: 1, Title: "T"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := catalog.Update(ctx, created.ID, TaskInput{Domain: "web", WeekNo: 0, Title: "T"}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("weekNo 0: want validation got=%v", err)
	}
	if _, err := catalog.Update(ctx, created.ID, TaskInput{Domain: " ", WeekNo: 1, Title: "T"}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("blank domain: want validation got=%v", err)
	}
}

func TestTaskCatalog_DeleteContentAndCascade(t *testing.T) {
	h := newHarness(t, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))
	files := &fakeFiles{}
	catalog := newCatalog(t, h, files)
	ctx := context.Background()

	video := bucketBase + "videos/intro.mp4"
	brief := bucketBase + "tasks/brief.pdf"
	created, err := catalog.Create(ctx, TaskInput{
		Domain:      "web",
		WeekNo:      1,
		Title:       "T",
		VideoURL:    strPtr(video),
		TaskFileURL: strPtr(brief),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := catalog.DeleteContent(ctx, created.ID, types.ContentField("poster")); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("unknown field: want validation got=%v", err)
	}
	after, err := catalog.DeleteContent(ctx, created.ID, tasks.ContentVideo)
	if err != nil {
		t.Fatalf("DeleteContent: %v", err)
	}
	if after.VideoURL != "" {
		t.Fatalf("video after delete: got=%q", after.VideoURL)
	}
	if len(files.deleted) != 1 || files.deleted[0] != video {
		t.Fatalf("deleted objects: want=[%s] got=%v", video, files.deleted)
	}

	if err := catalog.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := catalog.Get(ctx, created.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("Get after delete: want not found got=%v", err)
	}
	if len(files.deleted) != 2 || files.deleted[1] != brief {
		t.Fatalf("cascade object delete: got=%v", files.deleted)
	}
}
