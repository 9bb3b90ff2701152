package db

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTx runs fn inside a serializable transaction. The invariants that span
// multiple rows (cart totals, stock counts, default flags) all depend on the
// read-validate-write sequence being serialized, so every multi-row mutation
// in the repositories goes through here.
func WithTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
