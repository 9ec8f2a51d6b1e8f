package runtime

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Handler runs one job_type claimed from job_run, e.g. the task_created
// fan-out.
type Handler interface {
	Type() string
	Run(ctx *Context) error
}

// Registry routes claimed job_run rows to their handler by job_type.
type Registry struct {
	mu     sync.RWMutex
	byType map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{byType: map[string]Handler{}}
}

// Register rejects blank and duplicate job types so a misconfigured worker
// fails at boot instead of parking rows as failed.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("register: nil handler")
	}
	jobType := strings.TrimSpace(h.Type())
	if jobType == "" {
		return fmt.Errorf("register %T: blank job type", h)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byType[jobType]; ok {
		return fmt.Errorf("register %T: job type %q already handled by %T", h, jobType, prev)
	}
	r.byType[jobType] = h
	return nil
}

func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	h, ok := r.byType[jobType]
	r.mu.RUnlock()
	return h, ok
}

// Types lists the registered job types in order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.byType))
	for t := range r.byType {
		out = append(out, t)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}
