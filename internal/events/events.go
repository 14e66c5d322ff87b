package events

import (
	"context"
	"time"
)

// SubjectOrderCreated is the subject successful checkouts publish to.
const SubjectOrderCreated = "orders.created"

// OrderCreated is emitted after an order and its gateway session are
// durably committed. Consumers (fulfillment, notifications) key on the
// order code.
type OrderCreated struct {
	EventID     string    `json:"event_id"`
	OrderID     int64     `json:"order_id"`
	OrderCode   string    `json:"order_code"`
	UserID      int64     `json:"user_id"`
	CartID      int64     `json:"cart_id"`
	TotalAmount int64     `json:"total_amount"`
	Currency    string    `json:"currency"`
	Gateway     string    `json:"gateway"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher emits checkout events. Publishing is best-effort: the order is
// already committed when these fire, so failures are logged, not rolled
// back.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, ev OrderCreated) error
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

// PublishOrderCreated discards the event.
func (NoopPublisher) PublishOrderCreated(ctx context.Context, ev OrderCreated) error {
	return nil
}
