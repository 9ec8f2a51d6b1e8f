// Package dbctx threads an optional open transaction through repo calls.
package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context is what every repo method takes. A nil Tx means the repo runs
// on its own pool.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// DB returns Tx, or pool when no transaction is open, bound to Ctx.
func (c Context) DB(pool *gorm.DB) *gorm.DB {
	db := c.Tx
	if db == nil {
		db = pool
	}
	if db == nil {
		return nil
	}
	if c.Ctx == nil {
		return db.WithContext(context.Background())
	}
	return db.WithContext(c.Ctx)
}
