// Package orders owns the order entity and its state machine.
package orders

import (
	"errors"
	"time"

	"github.com/novamart/novamart/internal/inventory"
)

// ShippingAddress is stored on the order as entered at checkout.
type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Item is a line of an order. Name and price are snapshots copied at creation
// time so later catalog edits never change historical orders.
type Item struct {
	ID            int64   `json:"id"`
	OrderID       int64   `json:"order_id"`
	ProductID     int64   `json:"product_id"`
	NameSnapshot  string  `json:"name"`
	PriceSnapshot float64 `json:"price"`
	Quantity      int64   `json:"quantity"`
}

// Order is a financial record; it is never physically deleted.
type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"order_number"`
	UserID          int64           `json:"user_id"`
	Items           []Item          `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	ItemsPrice      float64         `json:"items_price"`
	TaxPrice        float64         `json:"tax_price"`
	ShippingPrice   float64         `json:"shipping_price"`
	TotalPrice      float64         `json:"total_price"`
	IsPaid          bool            `json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	Status          Status          `json:"status"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	IsDelivered     bool            `json:"is_delivered"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	Version         int64           `json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

var (
	// ErrNotFound indicates the requested order does not exist. Lookup sites
	// wrap it with the order id so 404 details name the order.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidStatus indicates an unknown status literal.
	ErrInvalidStatus = errors.New("orders: invalid status")
	// ErrVersionConflict indicates a concurrent transition on the same order.
	ErrVersionConflict = errors.New("orders: concurrent update, retry")
)

// Transition applies the requested status to the order after validating the
// edge, setting timestamps as side effects. It returns the inventory
// adjustments the caller must apply in the same persistence transaction
// (restocks when cancelling, nothing otherwise).
func (o *Order) Transition(to Status, now time.Time) ([]inventory.Adjustment, error) {
	if err := CanTransition(o.Status, to); err != nil {
		return nil, err
	}

	o.Status = to
	switch to {
	case StatusShipped:
		if o.ShippedAt == nil {
			t := now
			o.ShippedAt = &t
		}
	case StatusDelivered:
		if o.DeliveredAt == nil {
			t := now
			o.DeliveredAt = &t
		}
		o.IsDelivered = true
	case StatusCancelled:
		restocks := make([]inventory.Adjustment, 0, len(o.Items))
		for _, item := range o.Items {
			restocks = append(restocks, inventory.Adjustment{ProductID: item.ProductID, Delta: item.Quantity})
		}
		return restocks, nil
	}
	return nil, nil
}

// Decrements returns the stock decrements order creation must apply
// atomically with the insert.
func (o *Order) Decrements() []inventory.Adjustment {
	decs := make([]inventory.Adjustment, 0, len(o.Items))
	for _, item := range o.Items {
		decs = append(decs, inventory.Adjustment{ProductID: item.ProductID, Delta: -item.Quantity})
	}
	return decs
}
