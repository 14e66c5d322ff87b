package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Order domain errors.
var (
	ErrOrderNotFound       = &Error{Code: EINVALID, Message: "Order not found"}
	ErrOrderCreationFailed = &Error{Code: EINVALID, Message: "Order creation failed"}
	ErrDuplicateOrderCode  = &Error{Code: ECONFLICT, Message: "Order code already exists"}
)

// PaymentStatus is the payment lifecycle of an order. Checkout only ever
// writes PENDING and FAILED; PAID arrives via later settlement flows.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Order status values for the separate fulfillment lifecycle field.
const (
	OrderStatusPending = "PENDING"
	OrderStatusFailed  = "FAILED"
)

// Order is the output of checkout. Immutable once created except for
// payment_status/status and the gateway response, which are written at
// most twice (initial PENDING, then the gateway outcome).
type Order struct {
	ID              int64
	Code            string
	UserID          int64
	CartID          int64
	TotalAmount     int64
	PaymentStatus   PaymentStatus
	Status          string
	ShippingAddress string
	GatewayName     string

	// GatewayResponse is the opaque payload returned by the payment
	// gateway, persisted verbatim. Nil until the gateway responds.
	GatewayResponse []byte

	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// CreateOrderParams are the fields written when the PENDING order row is
// first persisted.
type CreateOrderParams struct {
	Code            string
	UserID          int64
	CartID          int64
	TotalAmount     int64
	ShippingAddress string
	GatewayName     string
}

// OrderStore provides order persistence for the checkout flow.
type OrderStore interface {
	// CreateOrder inserts a new PENDING order. Returns ErrDuplicateOrderCode
	// when the code collides with an existing one.
	CreateOrder(ctx context.Context, params CreateOrderParams) (*Order, error)

	// AttachGatewayResponse stores the gateway's success payload on the order.
	AttachGatewayResponse(ctx context.Context, orderID int64, payload []byte) (*Order, error)

	// MarkOrderFailed flips the order to FAILED and records any diagnostic
	// gateway payload. Compensation path only.
	MarkOrderFailed(ctx context.Context, orderID int64, payload []byte) error

	// GetOrderByCode returns the order with the given code owned by userID.
	// Scoping by both prevents cross-user disclosure.
	GetOrderByCode(ctx context.Context, userID int64, code string) (*Order, error)
}

// Store aggregates the per-entity stores so a transaction can span them.
type Store interface {
	UserReader
	CartStore
	OrderStore
}

// TxManager runs fn inside a single database transaction. The transaction
// commits when fn returns nil and rolls back when it returns an error or
// panics.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error
}
