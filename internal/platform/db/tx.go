package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTx runs fn inside a READ COMMITTED transaction, committing on success
// and rolling back on error.
//
// The level matters: stock decrements use a conditional UPDATE whose
// predicate must be re-evaluated against the winner's committed row when two
// writers race on the same product. REPEATABLE READ would instead abort the
// loser with SQLSTATE 40001. Per-order serialization does not come from the
// isolation level; it comes from the orders.version check.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}

// IsSerializationFailure reports whether err is a PostgreSQL serialization
// failure (SQLSTATE 40001). WithTx itself cannot raise one, but a DSN can
// force a stronger default isolation level, so version-checked writers treat
// it as losing the race rather than as an internal error.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}
