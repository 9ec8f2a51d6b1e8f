package runtime

import "testing"

type namedHandler string

func (h namedHandler) Type() string       { return string(h) }
func (h namedHandler) Run(*Context) error { return nil }

func TestRegistryRejectsBlankAndDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(namedHandler("task_created")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.Register(namedHandler("task_created")); err == nil {
		t.Fatalf("duplicate register: want error got=nil")
	}
	if err := r.Register(namedHandler("  ")); err == nil {
		t.Fatalf("blank register: want error got=nil")
	}
	if err := r.Register(nil); err == nil {
		t.Fatalf("nil register: want error got=nil")
	}
	if _, ok := r.Get("task_created"); !ok {
		t.Fatalf("get: want=true got=false")
	}
	if _, ok := r.Get("course_build"); ok {
		t.Fatalf("get unknown: want=false got=true")
	}
	if got := r.Types(); len(got) != 1 || got[0] != "task_created" {
		t.Fatalf("types: want=[task_created] got=%v", got)
	}
}
