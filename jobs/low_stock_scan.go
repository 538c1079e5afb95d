package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// LowStockScanJob sweeps the catalog for products at or below their reorder
// threshold and reports each one.
type LowStockScanJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	clock  func() time.Time
}

// NewLowStockScanJob initialises the scan handler.
func NewLowStockScanJob(pool *pgxpool.Pool, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{
		Pool:   pool,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type lowStockHit struct {
	ProductID int64
	SKU       string
	Name      string
	Stock     int64
	Threshold int64
}

// Handle executes the low stock sweep.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := j.now()
	logger := j.logger()
	logger.Info("starting low stock scan")

	hits, err := j.scan(ctx, payload)
	if err != nil {
		logger.Error("scan failed", slog.Any("error", err))
		return err
	}

	// Report hits with bounded fan-out; one slow report must not serialise
	// the rest of the sweep.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, hit := range hits {
		hit := hit
		g.Go(func() error {
			return j.report(gctx, hit)
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("report failed", slog.Any("error", err))
		return err
	}

	logger.Info("completed low stock scan",
		slog.Int("hits", len(hits)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *LowStockScanJob) scan(ctx context.Context, payload LowStockScanPayload) ([]lowStockHit, error) {
	if j.Pool == nil {
		return nil, errors.New("low stock scan: pool not configured")
	}
	query := `SELECT id, sku, name, stock_count, low_stock_threshold FROM products
WHERE is_active = TRUE AND stock_count <= low_stock_threshold ORDER BY stock_count ASC`
	args := []any{}
	if payload.Limit > 0 {
		query += ` LIMIT $1`
		args = append(args, payload.Limit)
	}
	rows, err := j.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hits := make([]lowStockHit, 0)
	for rows.Next() {
		var hit lowStockHit
		if err := rows.Scan(&hit.ProductID, &hit.SKU, &hit.Name, &hit.Stock, &hit.Threshold); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (j *LowStockScanJob) report(ctx context.Context, hit lowStockHit) error {
	j.logger().Warn("product low on stock",
		slog.Int64("product_id", hit.ProductID),
		slog.String("sku", hit.SKU),
		slog.String("name", hit.Name),
		slog.Int64("stock", hit.Stock),
		slog.Int64("threshold", hit.Threshold),
	)
	return nil
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLowStockScan))
	}
	return slog.Default().With(slog.String("job", TaskLowStockScan))
}

func (j *LowStockScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
