package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// Repos run against the transaction when one is present and fall back to
// their own handle otherwise.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// DB resolves the handle a repo call should run on.
func (dc Context) DB(fallback *gorm.DB) *gorm.DB {
	db := fallback
	if dc.Tx != nil {
		db = dc.Tx
	}
	ctx := dc.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return db.WithContext(ctx)
}
