package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/novamart/novamart/internal/platform/db"
)

// Executor is the subset of pgx operations the ledger needs. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so adjustments can join a
// caller-owned transaction.
type Executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ledger mutates product stock counts. Every decrement is validated against
// current stock inside the same UPDATE statement, so concurrent requests can
// never combine to oversell.
type Ledger struct {
	pool *pgxpool.Pool
}

// NewLedger constructs a Ledger.
func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Adjust applies a single signed adjustment.
func (l *Ledger) Adjust(ctx context.Context, productID, delta int64) error {
	return AdjustIn(ctx, l.pool, productID, delta)
}

// AdjustBatch applies all adjustments inside one transaction. If any item
// fails, nothing is applied.
func (l *Ledger) AdjustBatch(ctx context.Context, items []Adjustment) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithTx(ctx, l.pool, func(tx pgx.Tx) error {
		return AdjustBatchIn(ctx, tx, items)
	})
}

// AdjustIn applies one adjustment through the given executor. The stock check
// and the write are one statement; there is no read-then-write window.
func AdjustIn(ctx context.Context, ex Executor, productID, delta int64) error {
	if delta == 0 {
		return ErrInvalidAdjustment
	}
	tag, err := ex.Exec(ctx, `UPDATE products SET stock_count = stock_count + $2, updated_at = NOW()
WHERE id = $1 AND stock_count + $2 >= 0`, productID, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// The predicate failed: either the product is missing or stock is short.
	var available int64
	err = ex.QueryRow(ctx, `SELECT stock_count FROM products WHERE id = $1`, productID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &InsufficientStockError{ProductID: productID, Requested: -delta, Available: 0}
		}
		return err
	}
	return &InsufficientStockError{ProductID: productID, Requested: -delta, Available: available}
}

// AdjustBatchIn applies every adjustment through the given executor,
// typically a transaction owned by the caller. The first failure aborts; the
// caller's rollback discards any earlier adjustments.
func AdjustBatchIn(ctx context.Context, ex Executor, items []Adjustment) error {
	for _, item := range items {
		if err := AdjustIn(ctx, ex, item.ProductID, item.Delta); err != nil {
			return err
		}
	}
	return nil
}
