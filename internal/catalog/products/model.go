package products

import (
	"errors"
	"time"
)

// Product represents a catalog item and its stock position.
type Product struct {
	ID                int64     `json:"id"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	Price             float64   `json:"price"`
	StockCount        int64     `json:"stock_count"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

var (
	// ErrNotFound indicates the requested product does not exist.
	ErrNotFound = errors.New("products: not found")
	// ErrDuplicateSKU indicates the SKU is already taken.
	ErrDuplicateSKU = errors.New("products: sku already exists")
)
