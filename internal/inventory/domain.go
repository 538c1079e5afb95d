// Package inventory applies atomic, conditional stock adjustments.
package inventory

import (
	"errors"
	"fmt"
)

// Adjustment is a signed stock movement for one product.
type Adjustment struct {
	ProductID int64
	Delta     int64
}

// ErrInvalidAdjustment indicates a zero delta.
var ErrInvalidAdjustment = errors.New("inventory: delta must be non zero")

// InsufficientStockError reports a decrement that would drive stock negative.
type InsufficientStockError struct {
	ProductID int64
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("inventory: insufficient stock for product %d: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// Shortfall returns how many units were missing.
func (e *InsufficientStockError) Shortfall() int64 {
	return e.Requested - e.Available
}
