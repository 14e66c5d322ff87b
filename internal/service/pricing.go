package service

import (
	"github.com/kickzshop/checkout/internal/domain"
)

// ResolvedLine is a cart line after resolving the two column generations
// down to a single price and quantity.
type ResolvedLine struct {
	ItemID           int64
	ProductVariantID int64
	Name             string
	UnitPrice        int64
	Quantity         int32
}

// Subtotal returns the line total in minor units.
func (l ResolvedLine) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// ResolveLines normalizes cart items. Price wins over unit_price and
// missing prices resolve to zero; quantity wins over qty and missing
// quantities resolve to one.
func ResolveLines(items []domain.CartItem) []ResolvedLine {
	lines := make([]ResolvedLine, 0, len(items))
	for _, item := range items {
		line := ResolvedLine{
			ItemID:   item.ID,
			Quantity: 1,
		}
		if item.ProductVariantID.Valid {
			line.ProductVariantID = item.ProductVariantID.Int64
		}
		if item.Name.Valid {
			line.Name = item.Name.String
		}
		switch {
		case item.Price.Valid:
			line.UnitPrice = item.Price.Int64
		case item.UnitPrice.Valid:
			line.UnitPrice = item.UnitPrice.Int64
		}
		switch {
		case item.Quantity.Valid:
			line.Quantity = item.Quantity.Int32
		case item.Qty.Valid:
			line.Quantity = item.Qty.Int32
		}
		lines = append(lines, line)
	}
	return lines
}

// CartTotal computes the order total in minor units. Lines are summed
// first; if that sum is not positive the cart-level stored total is used
// instead. The result is never negative.
func CartTotal(cart *domain.Cart, lines []ResolvedLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.Subtotal()
	}
	if total <= 0 && cart != nil && cart.TotalValue.Valid {
		total = cart.TotalValue.Int64
	}
	if total < 0 {
		return 0
	}
	return total
}
