package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rishiwork16-sys/skilledUp-Website/internal/jobs/lease"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

// Routine is one periodic job. Run returns a summary that is logged and
// handed back to manual triggers.
type Routine struct {
	// Name is also the lease name, e.g. "unlock-job".
	Name     string
	Interval time.Duration
	// FirstRun, when set, delays the first tick (e.g. to the next midnight).
	FirstRun func(now time.Time) time.Time
	Run      func(ctx context.Context) (any, error)
}

type Metrics interface {
	ObserveJobRun(name, status string, dur time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveJobRun(string, string, time.Duration) {}

// Scheduler runs routines on their interval. Every run, periodic or
// triggered, holds the routine's lease so only one instance executes it.
type Scheduler struct {
	log      *logger.Logger
	locker   lease.Locker
	leaseTTL time.Duration
	metrics  Metrics
	now      func() time.Time

	mu       sync.Mutex
	routines map[string]Routine
	wg       sync.WaitGroup
}

func New(log *logger.Logger, locker lease.Locker, leaseTTL time.Duration, metrics Metrics) *Scheduler {
	if leaseTTL <= 0 {
		leaseTTL = 10 * time.Minute
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Scheduler{
		log:      log.With("service", "JobScheduler"),
		locker:   locker,
		leaseTTL: leaseTTL,
		metrics:  metrics,
		now:      time.Now,
		routines: map[string]Routine{},
	}
}

func (s *Scheduler) Register(r Routine) error {
	if r.Name == "" || r.Run == nil {
		return fmt.Errorf("routine requires a name and a run func")
	}
	if r.Interval <= 0 {
		return fmt.Errorf("routine %s: interval must be positive", r.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.routines[r.Name]; exists {
		return fmt.Errorf("routine already registered: %s", r.Name)
	}
	s.routines[r.Name] = r
	return nil
}

func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.routines))
	for name := range s.routines {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Start launches one loop per routine. Loops exit when ctx is done; Wait
// blocks until in-flight runs have finished.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.routines {
		s.wg.Add(1)
		go s.loop(ctx, r)
	}
	s.log.Info("Job scheduler started", "routines", len(s.routines))
}

func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) loop(ctx context.Context, r Routine) {
	defer s.wg.Done()

	first := r.Interval
	if r.FirstRun != nil {
		now := s.now()
		if at := r.FirstRun(now); at.After(now) {
			first = at.Sub(now)
		}
	}
	s.log.Info("Routine scheduled", "routine", r.Name, "first_in", first.String(), "interval", r.Interval.String())

	timer := time.NewTimer(first)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Routine loop stopped", "routine", r.Name)
			return
		case <-timer.C:
			if _, _, err := s.Trigger(ctx, r.Name); err != nil {
				s.log.Error("Routine run failed", "routine", r.Name, "error", err)
			}
			timer.Reset(r.Interval)
		}
	}
}

// Trigger runs the named routine once under its lease. ran is false when
// another instance holds the lease.
func (s *Scheduler) Trigger(ctx context.Context, name string) (ran bool, summary any, err error) {
	s.mu.Lock()
	r, ok := s.routines[name]
	s.mu.Unlock()
	if !ok {
		return false, nil, fmt.Errorf("%w: %s", ErrUnknownRoutine, name)
	}

	ctx, span := otel.Tracer("skilledup/scheduler").Start(ctx, "routine "+r.Name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("routine", r.Name)),
	)
	defer span.End()

	start := s.now()
	ran, err = lease.Run(ctx, s.log, s.locker, r.Name, s.leaseTTL, func(ctx context.Context) (runErr error) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("Routine panic", "routine", r.Name, "panic", rec)
				runErr = fmt.Errorf("routine %s panicked: %v", r.Name, rec)
			}
		}()
		summary, runErr = r.Run(ctx)
		return runErr
	})

	status := "succeeded"
	switch {
	case err != nil:
		status = "failed"
	case !ran:
		status = "skipped"
	}
	dur := s.now().Sub(start)
	s.metrics.ObserveJobRun(r.Name, status, dur)
	span.SetAttributes(attribute.String("status", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if ran {
		s.log.Info("Routine finished", "routine", r.Name, "status", status, "duration", dur.String(), "summary", summary)
	} else if err == nil {
		s.log.Debug("Routine skipped; lease held elsewhere", "routine", r.Name)
	}
	return ran, summary, err
}

var ErrUnknownRoutine = fmt.Errorf("unknown routine")

// NextMidnight is a FirstRun helper aligning a daily routine to 00:00 in loc.
func NextMidnight(loc *time.Location) func(time.Time) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return func(now time.Time) time.Time {
		l := now.In(loc)
		return time.Date(l.Year(), l.Month(), l.Day()+1, 0, 0, 0, 0, loc)
	}
}
