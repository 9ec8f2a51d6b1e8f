package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/data/repos/testutil"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
)

func TestJobLeaseRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewJobLeaseRepo(db, testutil.Logger(t))

	t0 := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	ttl := 10 * time.Minute

	ok, err := repo.TryAcquire(dbc, "unlock-job", "a", t0, ttl)
	if err != nil || !ok {
		t.Fatalf("acquire a: want=true got=%v err=%v", ok, err)
	}
	ok, err = repo.TryAcquire(dbc, "unlock-job", "b", t0.Add(time.Minute), ttl)
	if err != nil || ok {
		t.Fatalf("acquire b while held: want=false got=%v err=%v", ok, err)
	}
	ok, err = repo.TryAcquire(dbc, "deadline-job", "b", t0.Add(time.Minute), ttl)
	if err != nil || !ok {
		t.Fatalf("acquire other name: want=true got=%v err=%v", ok, err)
	}
	ok, err = repo.TryAcquire(dbc, "unlock-job", "a", t0.Add(2*time.Minute), ttl)
	if err != nil || ok {
		t.Fatalf("re-acquire by holder while held: want=false got=%v err=%v", ok, err)
	}
	row, err := repo.Get(dbc, "unlock-job")
	if err != nil || row == nil || !row.LockUntil.Equal(t0.Add(ttl)) {
		t.Fatalf("lease must keep its first expiry: want=%v got=%v err=%v", t0.Add(ttl), row, err)
	}

	ok, err = repo.TryAcquire(dbc, "unlock-job", "b", t0.Add(13*time.Minute), ttl)
	if err != nil || !ok {
		t.Fatalf("acquire after expiry: want=true got=%v err=%v", ok, err)
	}

	if err := repo.Release(dbc, "unlock-job", "a", t0.Add(14*time.Minute)); err != nil {
		t.Fatalf("release by non-holder: %v", err)
	}
	row, err = repo.Get(dbc, "unlock-job")
	if err != nil || row == nil || row.LockedBy != "b" {
		t.Fatalf("lease holder: want=b got=%v err=%v", row, err)
	}

	if err := repo.Release(dbc, "unlock-job", "b", t0.Add(14*time.Minute)); err != nil {
		t.Fatalf("release: %v", err)
	}
	ok, err = repo.TryAcquire(dbc, "unlock-job", "c", t0.Add(14*time.Minute), ttl)
	if err != nil || !ok {
		t.Fatalf("acquire after release: want=true got=%v err=%v", ok, err)
	}
}
