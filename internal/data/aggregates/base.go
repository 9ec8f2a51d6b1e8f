package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/logger"
)

// BaseDeps is shared by every aggregate. Only DB is required; the rest
// default in withDefaults.
type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
	Guard  Guard
	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Guard.db == nil {
		d.Guard = NewGuard(d.DB)
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

// now is always UTC so persisted timestamps never carry the schedule zone.
func (d BaseDeps) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now().UTC()
}

// executeWrite runs fn in one transaction, gives any failure an aggregate
// code and reports the outcome to the hooks under op.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	deps = deps.withDefaults()
	if op = strings.TrimSpace(op); op == "" {
		op = "Tasks.Write"
	}
	start := time.Now()
	err := MapError(op, deps.Runner.InTx(ctx, fn))
	outcome := outcomeOf(err)

	switch domainagg.ErrorCode(outcome) {
	case domainagg.CodeConflict:
		deps.Hooks.IncConflict(op)
	case domainagg.CodeRetryable:
		deps.Hooks.IncRetry(op)
	case domainagg.CodeInternal:
		deps.Log.Warn("Aggregate write failed", "op", op, "error", err)
	}
	deps.Hooks.ObserveOperation(op, outcome, time.Since(start))
	return err
}

// outcomeOf is the metrics label for a write result: "success" or the error
// code.
func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	if code := domainagg.CodeOf(err); code != "" {
		return string(code)
	}
	return string(domainagg.CodeInternal)
}
