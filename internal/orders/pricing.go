package orders

import "math"

// Pricing computes order totals. Tax is a flat rate multiplication; shipping
// is free above the threshold.
type Pricing struct {
	TaxRate               float64
	ShippingFlatRate      float64
	FreeShippingThreshold float64
}

// DefaultPricing mirrors the storefront defaults.
func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:               0.15,
		ShippingFlatRate:      10.0,
		FreeShippingThreshold: 100.0,
	}
}

// Totals computes items/tax/shipping/total from the item snapshots. The total
// is always recomputed server-side, never trusted from the caller.
func (p Pricing) Totals(items []Item) (itemsPrice, taxPrice, shippingPrice, totalPrice float64) {
	for _, item := range items {
		itemsPrice += item.PriceSnapshot * float64(item.Quantity)
	}
	itemsPrice = roundCents(itemsPrice)
	taxPrice = roundCents(itemsPrice * p.TaxRate)
	if itemsPrice < p.FreeShippingThreshold {
		shippingPrice = p.ShippingFlatRate
	}
	totalPrice = roundCents(itemsPrice + taxPrice + shippingPrice)
	return itemsPrice, taxPrice, shippingPrice, totalPrice
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
