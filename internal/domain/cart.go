package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Cart domain errors. An inactive cart is reported the same way as a
// missing one: the shopper sees "Cart not found" either way.
var (
	ErrCartNotFound = &Error{Code: EINVALID, Message: "Cart not found"}
	ErrEmptyCart    = &Error{Code: EINVALID, Message: "Cart is empty or invalid"}
)

// Cart is a user's pending selection of items. A cart flips active→inactive
// exactly once, at the moment it is claimed for order creation.
type Cart struct {
	ID     int64
	UserID int64
	Active bool

	// TotalValue is the cart-level stored total (minor units). It is the
	// pricing fallback when no line item carries a usable price.
	TotalValue pgtype.Int8

	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// CartItem is a cart line. Price and quantity each exist under two column
// generations (price/unit_price, quantity/qty); the pricing calculator
// resolves whichever is present.
type CartItem struct {
	ID               int64
	CartID           int64
	ProductVariantID pgtype.Int8
	Name             pgtype.Text
	Price            pgtype.Int8
	UnitPrice        pgtype.Int8
	Quantity         pgtype.Int4
	Qty              pgtype.Int4
}

// CartStore provides cart access for the checkout flow.
type CartStore interface {
	// ClaimCart atomically deactivates the cart if it belongs to userID and
	// is still active. It succeeds at most once per cart; a second caller
	// gets ErrCartNotFound. This is the first mutating step of checkout.
	ClaimCart(ctx context.Context, cartID, userID int64) (*Cart, error)

	// ReleaseCart re-activates a claimed cart. Compensation path only.
	ReleaseCart(ctx context.Context, cartID int64) error

	// GetCartItems returns the cart's lines in insertion order.
	GetCartItems(ctx context.Context, cartID int64) ([]CartItem, error)
}
