package aggregates

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/rishiwork16-sys/skilledUp-Website/internal/domain/aggregates"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/dbctx"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/platform/httpx"
)

// TxRunner is the transaction boundary every aggregate write goes through.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

const (
	defaultTxAttempts = 3
	defaultTxBackoff  = 20 * time.Millisecond
)

type gormTxRunner struct {
	db       *gorm.DB
	attempts int
	backoff  time.Duration
}

// NewGormTxRunner reruns the whole transaction when it fails on
// serialization, deadlock or a busy sqlite file. Aggregate decisions and
// cancellation are never retried.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db, attempts: defaultTxAttempts, backoff: defaultTxBackoff}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "Tasks.Tx", "transaction runner has nil db", nil)
	}
	var err error
	for attempt := 1; ; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(dbctx.Context{Ctx: ctx, Tx: tx})
		})
		if attempt >= r.attempts || !shouldRetryTx(err) {
			return err
		}
		if httpx.Sleep(ctx, httpx.JitterSleep(r.backoff*time.Duration(attempt))) != nil {
			return err
		}
	}
}

func shouldRetryTx(err error) bool {
	var aggErr *domainagg.Error
	switch {
	case err == nil:
		return false
	case errors.As(err, &aggErr):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return classify(err) == domainagg.CodeRetryable
}
