package orders

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTotalsBelowFreeShippingThreshold(t *testing.T) {
	p := DefaultPricing()
	items := []Item{
		{PriceSnapshot: 20, Quantity: 2},
		{PriceSnapshot: 9.99, Quantity: 1},
	}
	itemsPrice, taxPrice, shippingPrice, totalPrice := p.Totals(items)
	require.Equal(t, 49.99, itemsPrice)
	require.Equal(t, 7.50, taxPrice)
	require.Equal(t, 10.0, shippingPrice)
	require.Equal(t, 67.49, totalPrice)
}

func TestTotalsFreeShipping(t *testing.T) {
	p := DefaultPricing()
	items := []Item{{PriceSnapshot: 50, Quantity: 2}}
	itemsPrice, taxPrice, shippingPrice, totalPrice := p.Totals(items)
	require.Equal(t, 100.0, itemsPrice)
	require.Equal(t, 15.0, taxPrice)
	require.Equal(t, 0.0, shippingPrice)
	require.Equal(t, 115.0, totalPrice)
}

func TestTotalsRoundsToCents(t *testing.T) {
	p := DefaultPricing()
	items := []Item{{PriceSnapshot: 3.33, Quantity: 3}}
	itemsPrice, taxPrice, _, totalPrice := p.Totals(items)
	require.Equal(t, 9.99, itemsPrice)
	// 9.99 * 0.15 = 1.4985, rounds to 1.50
	require.Equal(t, 1.50, taxPrice)
	require.Equal(t, 21.49, totalPrice)
}

func TestTotalsEmpty(t *testing.T) {
	p := DefaultPricing()
	itemsPrice, taxPrice, shippingPrice, totalPrice := p.Totals(nil)
	require.Equal(t, 0.0, itemsPrice)
	require.Equal(t, 0.0, taxPrice)
	require.Equal(t, 10.0, shippingPrice)
	require.Equal(t, 10.0, totalPrice)
}
