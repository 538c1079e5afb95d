package inventory

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

// stockTable emulates the products table the ledger's SQL runs against: the
// conditional UPDATE either applies atomically or touches zero rows, and the
// follow-up SELECT reads the current count.
type stockTable struct {
	stock map[int64]int64
}

var _ Executor = (*stockTable)(nil)

func (s *stockTable) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	id := args[0].(int64)
	delta := args[1].(int64)
	current, ok := s.stock[id]
	if !ok || current+delta < 0 {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	s.stock[id] = current + delta
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (s *stockTable) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	id := args[0].(int64)
	current, ok := s.stock[id]
	if !ok {
		return errRow{err: pgx.ErrNoRows}
	}
	return countRow{count: current}
}

type countRow struct{ count int64 }

func (r countRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.count
	return nil
}

type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }

func TestAdjustInMovesStock(t *testing.T) {
	table := &stockTable{stock: map[int64]int64{1: 10}}
	ctx := context.Background()

	require.NoError(t, AdjustIn(ctx, table, 1, -3))
	require.Equal(t, int64(7), table.stock[1])

	require.NoError(t, AdjustIn(ctx, table, 1, 5))
	require.Equal(t, int64(12), table.stock[1])

	require.NoError(t, AdjustIn(ctx, table, 1, -12))
	require.Equal(t, int64(0), table.stock[1])
}

func TestAdjustInShortfall(t *testing.T) {
	table := &stockTable{stock: map[int64]int64{1: 3}}

	err := AdjustIn(context.Background(), table, 1, -4)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, int64(1), stockErr.ProductID)
	require.Equal(t, int64(4), stockErr.Requested)
	require.Equal(t, int64(3), stockErr.Available)
	require.Equal(t, int64(1), stockErr.Shortfall())

	require.Equal(t, int64(3), table.stock[1])
}

func TestAdjustInUnknownProduct(t *testing.T) {
	table := &stockTable{stock: map[int64]int64{}}

	err := AdjustIn(context.Background(), table, 9, -1)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, int64(9), stockErr.ProductID)
	require.Equal(t, int64(0), stockErr.Available)
}

func TestAdjustInRejectsZeroDelta(t *testing.T) {
	table := &stockTable{stock: map[int64]int64{1: 10}}

	err := AdjustIn(context.Background(), table, 1, 0)
	require.ErrorIs(t, err, ErrInvalidAdjustment)
	require.Equal(t, int64(10), table.stock[1])
}

func TestAdjustBatchInAppliesAllLines(t *testing.T) {
	table := &stockTable{stock: map[int64]int64{1: 5, 2: 4}}

	err := AdjustBatchIn(context.Background(), table, []Adjustment{
		{ProductID: 1, Delta: -2},
		{ProductID: 2, Delta: -4},
	})
	require.NoError(t, err)
	require.Equal(t, int64(3), table.stock[1])
	require.Equal(t, int64(0), table.stock[2])
}

func TestAdjustBatchInStopsAtFirstFailure(t *testing.T) {
	table := &stockTable{stock: map[int64]int64{1: 5, 2: 4}}

	err := AdjustBatchIn(context.Background(), table, []Adjustment{
		{ProductID: 1, Delta: -2},
		{ProductID: 2, Delta: -10},
		{ProductID: 1, Delta: -1},
	})
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, int64(2), stockErr.ProductID)

	// The first line was applied; the caller's rollback discards it. The
	// line after the failure must never run.
	require.Equal(t, int64(3), table.stock[1])
	require.Equal(t, int64(4), table.stock[2])
}
