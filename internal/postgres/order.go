package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kickzshop/checkout/internal/domain"
)

const orderColumns = `id, code, user_id, cart_id, total_amount, payment_status, status,
	shipping_address, pg_name, pg_response, created_at, updated_at`

const createOrderSQL = `
INSERT INTO orders (code, user_id, cart_id, total_amount, payment_status, status, shipping_address, pg_name)
VALUES ($1, $2, $3, $4, 'PENDING', 'PENDING', $5, $6)
RETURNING ` + orderColumns

// CreateOrder inserts a new PENDING order. A unique-constraint violation on
// the code column surfaces as ErrDuplicateOrderCode so the caller can retry
// with a fresh code.
func (q *Queries) CreateOrder(ctx context.Context, params domain.CreateOrderParams) (*domain.Order, error) {
	row := q.db.QueryRow(ctx, createOrderSQL,
		params.Code, params.UserID, params.CartID, params.TotalAmount,
		params.ShippingAddress, params.GatewayName)

	o, err := scanOrder(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrDuplicateOrderCode
		}
		return nil, fmt.Errorf("create order %s: %w", params.Code, err)
	}
	return o, nil
}

const attachGatewayResponseSQL = `
UPDATE orders SET pg_response = $2, updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

// AttachGatewayResponse stores the gateway's payload on the order verbatim.
func (q *Queries) AttachGatewayResponse(ctx context.Context, orderID int64, payload []byte) (*domain.Order, error) {
	row := q.db.QueryRow(ctx, attachGatewayResponseSQL, orderID, payload)
	o, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("attach gateway response to order %d: %w", orderID, err)
	}
	return o, nil
}

const markOrderFailedSQL = `
UPDATE orders SET payment_status = 'FAILED', status = 'FAILED', pg_response = $2, updated_at = now()
WHERE id = $1`

// MarkOrderFailed records the gateway rejection on the order.
func (q *Queries) MarkOrderFailed(ctx context.Context, orderID int64, payload []byte) error {
	if _, err := q.db.Exec(ctx, markOrderFailedSQL, orderID, payload); err != nil {
		return fmt.Errorf("mark order %d failed: %w", orderID, err)
	}
	return nil
}

const getOrderByCodeSQL = `
SELECT ` + orderColumns + `
FROM orders
WHERE code = $1 AND user_id = $2`

// GetOrderByCode returns the order scoped by both code and owning user.
func (q *Queries) GetOrderByCode(ctx context.Context, userID int64, code string) (*domain.Order, error) {
	row := q.db.QueryRow(ctx, getOrderByCodeSQL, code, userID)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", code, err)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.Code, &o.UserID, &o.CartID, &o.TotalAmount,
		&o.PaymentStatus, &o.Status, &o.ShippingAddress, &o.GatewayName,
		&o.GatewayResponse, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
