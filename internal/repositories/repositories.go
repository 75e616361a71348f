package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/sonic57/internal/shared"
)

// withTx runs fn inside a transaction, committing when fn returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrStorage, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", shared.ErrStorage, err)
	}
	return nil
}

// storageErr tags a driver error as a storage failure.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", shared.ErrStorage, op, err)
}

// nullString returns the value of s or "" when s is NULL.
func nullString(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}
