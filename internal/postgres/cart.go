package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kickzshop/checkout/internal/domain"
)

const claimCartSQL = `
UPDATE carts
SET active = FALSE, updated_at = now()
WHERE id = $1 AND user_id = $2 AND active
RETURNING id, user_id, active, total_cart_value, created_at, updated_at`

// ClaimCart deactivates the cart if it belongs to userID and is still
// active. The conditional UPDATE makes the claim atomic: of any number of
// concurrent callers, exactly one sees a row. Missing, foreign, and
// already-claimed carts are indistinguishable to the caller.
func (q *Queries) ClaimCart(ctx context.Context, cartID, userID int64) (*domain.Cart, error) {
	var c domain.Cart
	row := q.db.QueryRow(ctx, claimCartSQL, cartID, userID)
	if err := row.Scan(&c.ID, &c.UserID, &c.Active, &c.TotalValue, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("claim cart %d: %w", cartID, err)
	}
	return &c, nil
}

const releaseCartSQL = `UPDATE carts SET active = TRUE, updated_at = now() WHERE id = $1`

// ReleaseCart re-activates a claimed cart after a failed gateway call.
func (q *Queries) ReleaseCart(ctx context.Context, cartID int64) error {
	if _, err := q.db.Exec(ctx, releaseCartSQL, cartID); err != nil {
		return fmt.Errorf("release cart %d: %w", cartID, err)
	}
	return nil
}

const getCartItemsSQL = `
SELECT id, cart_id, product_variant_id, name, price, unit_price, quantity, qty
FROM cart_items
WHERE cart_id = $1
ORDER BY id`

// GetCartItems returns the cart's lines in insertion order.
func (q *Queries) GetCartItems(ctx context.Context, cartID int64) ([]domain.CartItem, error) {
	rows, err := q.db.Query(ctx, getCartItemsSQL, cartID)
	if err != nil {
		return nil, fmt.Errorf("get cart items %d: %w", cartID, err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductVariantID, &it.Name, &it.Price, &it.UnitPrice, &it.Quantity, &it.Qty); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return items, nil
}
