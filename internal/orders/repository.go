package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/novamart/novamart/internal/inventory"
	"github.com/novamart/novamart/internal/platform/db"
)

// Repository persists orders.
type Repository interface {
	Create(ctx context.Context, order *Order, decrements []inventory.Adjustment) error
	Get(ctx context.Context, id int64) (Order, error)
	List(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	UpdateStatus(ctx context.Context, order *Order, restocks []inventory.Adjustment) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

// Create inserts the order, its items, and applies the stock decrements in one
// transaction. If any product is short, the whole checkout rolls back and the
// stock error surfaces to the caller.
func (r *pgRepository) Create(ctx context.Context, order *Order, decrements []inventory.Adjustment) error {
	addr, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("orders: marshal shipping address: %w", err)
	}

	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO orders
(order_number, user_id, shipping_address, items_price, tax_price, shipping_price, total_price, status, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
RETURNING id, version, created_at, updated_at`,
			order.OrderNumber, order.UserID, addr,
			order.ItemsPrice, order.TaxPrice, order.ShippingPrice, order.TotalPrice,
			order.Status,
		).Scan(&order.ID, &order.Version, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return err
		}

		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			err := tx.QueryRow(ctx, `INSERT INTO order_items
(order_id, product_id, name_snapshot, price_snapshot, quantity)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`,
				item.OrderID, item.ProductID, item.NameSnapshot, item.PriceSnapshot, item.Quantity,
			).Scan(&item.ID)
			if err != nil {
				return err
			}
		}

		return inventory.AdjustBatchIn(ctx, tx, decrements)
	})
}

// Get loads one order with its items.
func (r *pgRepository) Get(ctx context.Context, id int64) (Order, error) {
	row := r.pool.QueryRow(ctx, selectOrder+` WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, fmt.Errorf("orders: order %d: %w", id, ErrNotFound)
		}
		return Order{}, err
	}
	if err := r.loadItems(ctx, &order); err != nil {
		return Order{}, err
	}
	return order, nil
}

// List returns all orders, newest first.
func (r *pgRepository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, selectOrder+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

// ListByUser returns the given user's orders, newest first.
func (r *pgRepository) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := r.pool.Query(ctx, selectOrder+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, rows)
}

// UpdateStatus persists a transition already applied to the in-memory order.
// The WHERE clause checks the version the order was loaded at; zero rows means
// another request won the race and the caller gets ErrVersionConflict.
func (r *pgRepository) UpdateStatus(ctx context.Context, order *Order, restocks []inventory.Adjustment) error {
	err := r.updateStatusTx(ctx, order, restocks)
	if db.IsSerializationFailure(err) {
		// Only possible when the DSN forces an isolation level above
		// WithTx's READ COMMITTED; the loser lost the race either way.
		return ErrVersionConflict
	}
	return err
}

func (r *pgRepository) updateStatusTx(ctx context.Context, order *Order, restocks []inventory.Adjustment) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE orders SET
status = $3, is_paid = $4, paid_at = $5, shipped_at = $6, is_delivered = $7, delivered_at = $8,
version = version + 1, updated_at = NOW()
WHERE id = $1 AND version = $2`,
			order.ID, order.Version,
			order.Status, order.IsPaid, order.PaidAt, order.ShippedAt, order.IsDelivered, order.DeliveredAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}
		order.Version++

		return inventory.AdjustBatchIn(ctx, tx, restocks)
	})
}

const selectOrder = `SELECT id, order_number, user_id, shipping_address,
items_price, tax_price, shipping_price, total_price,
is_paid, paid_at, status, shipped_at, is_delivered, delivered_at,
version, created_at, updated_at
FROM orders`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var addr []byte
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &addr,
		&o.ItemsPrice, &o.TaxPrice, &o.ShippingPrice, &o.TotalPrice,
		&o.IsPaid, &o.PaidAt, &o.Status, &o.ShippedAt, &o.IsDelivered, &o.DeliveredAt,
		&o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if len(addr) > 0 {
		if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
			return Order{}, fmt.Errorf("orders: unmarshal shipping address: %w", err)
		}
	}
	return o, nil
}

func (r *pgRepository) collect(ctx context.Context, rows pgx.Rows) ([]Order, error) {
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *pgRepository) loadItems(ctx context.Context, order *Order) error {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, product_id, name_snapshot, price_snapshot, quantity
FROM order_items WHERE order_id = $1 ORDER BY id`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.NameSnapshot, &item.PriceSnapshot, &item.Quantity); err != nil {
			return err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	order.Items = items
	return nil
}
