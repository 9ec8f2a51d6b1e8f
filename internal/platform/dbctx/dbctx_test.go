package dbctx

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestDBPrefersTx(t *testing.T) {
	if (Context{}).DB(nil) != nil {
		t.Fatalf("no tx and no pool: want=nil")
	}
	pool, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "req")
	err = pool.Transaction(func(tx *gorm.DB) error {
		got := Context{Ctx: ctx, Tx: tx}.DB(pool)
		if got.Statement.ConnPool != tx.Statement.ConnPool {
			t.Fatalf("tx: want the transaction's connection")
		}
		if got.Statement.Context.Value(ctxKey{}) != "req" {
			t.Fatalf("tx: want Ctx bound")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if got := (Context{}).DB(pool); got.Statement.Context == nil {
		t.Fatalf("pool: want background context bound")
	}
}
