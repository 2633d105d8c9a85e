package pkg

import (
	"context"

	"gorm.io/gorm"
)

// WithTxContext runs fn as one transaction bound to ctx. It commits when fn
// returns nil and rolls back when fn fails or panics; the panic is re-raised.
// Nothing is started once ctx is done.
func WithTxContext(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(fn)
}
