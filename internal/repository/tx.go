package repository

import (
	"context"
	"database/sql"
)

type txKey struct{}

// WithTx runs fn inside a database transaction. The transaction is
// stored in the context so that repository methods called from fn
// automatically participate in it; a nested call reuses the ambient
// transaction instead of opening a second one. Any error from fn rolls
// the transaction back, so an early return can never leave partial
// writes behind. Row locks taken inside fn are held until the commit
// or rollback here.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// executor is the subset of *sql.DB and *sql.Tx used by repositories.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// exec returns the ambient transaction when one is present in ctx and
// the plain DB handle otherwise.
func exec(ctx context.Context, db *sql.DB) executor {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}
