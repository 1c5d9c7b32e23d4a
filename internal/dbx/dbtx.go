// Package dbx holds the database handle shared by the tracker repositories
// and the transaction helper used for the extra-puff and counter writes.
package dbx

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/puffkeeper/internal/logging"
)

// DBTX is what a repository needs to run queries: *sql.DB outside a
// transaction, *sql.Tx inside one.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside one transaction. It commits when fn returns nil and
// rolls back when fn fails or panics; a panic is re-raised after the
// rollback. Rollback failures do not replace the error of fn, so they are
// reported through l instead. l may be nil.
func WithTx(ctx context.Context, db *sql.DB, l logging.Logger, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	if l == nil {
		l = logging.Nop{}
	}

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	rollback := func(cause any) {
		if rbErr := tx.Rollback(); rbErr != nil {
			l.Error(ctx, "rollback failed", "cause", cause, "error", rbErr)
		}
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(p)
			panic(p)
		}
		if err != nil {
			rollback(err)
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("commit tx: %w", cErr)
		}
	}()

	return fn(ctx, tx)
}
