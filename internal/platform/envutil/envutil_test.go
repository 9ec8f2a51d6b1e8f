package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("X_DUR", "90s")
	if got := Duration("X_DUR", time.Minute); got != 90*time.Second {
		t.Fatalf("go syntax: want=90s got=%s", got)
	}
	t.Setenv("X_DUR", "120")
	if got := Duration("X_DUR", time.Minute); got != 2*time.Minute {
		t.Fatalf("seconds: want=2m got=%s", got)
	}
	t.Setenv("X_DUR", "nope")
	if got := Duration("X_DUR", time.Minute); got != time.Minute {
		t.Fatalf("fallback: want=1m got=%s", got)
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("X_BOOL", "off")
	if Bool("X_BOOL", true) {
		t.Fatalf("bool: want=false")
	}
	t.Setenv("X_LIST", " a, ,b ")
	got := List("X_LIST")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("list: got=%v", got)
	}
}

func TestIntFallback(t *testing.T) {
	t.Setenv("X_INT", "abc")
	if got := Int("X_INT", 7); got != 7 {
		t.Fatalf("int: want=7 got=%d", got)
	}
}
