package service

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"

	"github.com/kickzshop/checkout/internal/domain"
)

func int8Val(v int64) pgtype.Int8 {
	return pgtype.Int8{Int64: v, Valid: true}
}

func int4Val(v int32) pgtype.Int4 {
	return pgtype.Int4{Int32: v, Valid: true}
}

func TestResolveLines(t *testing.T) {
	t.Run("price column wins over unit_price", func(t *testing.T) {
		lines := ResolveLines([]domain.CartItem{
			{ID: 1, Price: int8Val(10000), UnitPrice: int8Val(9000), Quantity: int4Val(2)},
		})
		assert.Equal(t, int64(10000), lines[0].UnitPrice)
		assert.Equal(t, int32(2), lines[0].Quantity)
	})

	t.Run("falls back to unit_price and qty", func(t *testing.T) {
		lines := ResolveLines([]domain.CartItem{
			{ID: 1, UnitPrice: int8Val(5000), Qty: int4Val(3)},
		})
		assert.Equal(t, int64(5000), lines[0].UnitPrice)
		assert.Equal(t, int32(3), lines[0].Quantity)
	})

	t.Run("missing price is zero and missing quantity is one", func(t *testing.T) {
		lines := ResolveLines([]domain.CartItem{{ID: 1}})
		assert.Equal(t, int64(0), lines[0].UnitPrice)
		assert.Equal(t, int32(1), lines[0].Quantity)
	})
}

func TestCartTotal(t *testing.T) {
	t.Run("sums line subtotals", func(t *testing.T) {
		lines := ResolveLines([]domain.CartItem{
			{ID: 1, Price: int8Val(10000), Quantity: int4Val(2)},
			{ID: 2, Price: int8Val(5000), Quantity: int4Val(1)},
		})
		total := CartTotal(&domain.Cart{}, lines)
		assert.Equal(t, int64(25000), total)
	})

	t.Run("uses the stored cart total when lines have no usable prices", func(t *testing.T) {
		lines := ResolveLines([]domain.CartItem{{ID: 1}, {ID: 2}})
		cart := &domain.Cart{TotalValue: int8Val(30000)}
		assert.Equal(t, int64(30000), CartTotal(cart, lines))
	})

	t.Run("zero when neither lines nor cart carry a total", func(t *testing.T) {
		assert.Equal(t, int64(0), CartTotal(&domain.Cart{}, nil))
	})

	t.Run("never negative", func(t *testing.T) {
		lines := []ResolvedLine{{UnitPrice: -10000, Quantity: 1}}
		cart := &domain.Cart{TotalValue: int8Val(-500)}
		assert.Equal(t, int64(0), CartTotal(cart, lines))
	})
}
