package payment

import (
	"context"
	"encoding/json"
)

// Provider defines the interface for payment gateways.
// Implementations can use Cashfree, Stripe, etc.
type Provider interface {
	// CreatePaymentSession creates a remote payment session for an order.
	// The call is synchronous and single-attempt; the caller owns all retry
	// and compensation policy. A gateway rejection is returned as a
	// *SessionError carrying the gateway's diagnostic payload.
	CreatePaymentSession(ctx context.Context, params SessionParams) (*Session, error)
}

// CustomerDetails identifies the paying customer to the gateway.
type CustomerDetails struct {
	CustomerID string
	Name       string
	Phone      string
	Email      string
}

// LineItem is a flattened cart line included in the session payload.
type LineItem struct {
	ID               int64
	ProductVariantID int64
	UnitPrice        int64 // minor units
	Quantity         int32
	Name             string
}

// SessionParams contains everything the gateway needs to open a session.
type SessionParams struct {
	// OrderID is the order code, used as the gateway's external order
	// reference.
	OrderID string

	// AmountMinor is the order total in minor currency units (paise).
	AmountMinor int64

	// Currency code (ISO 4217), e.g. "INR".
	Currency string

	Customer CustomerDetails

	// ReturnURL is where the gateway redirects the shopper after payment.
	// It carries the order code so the frontend can show confirmation.
	ReturnURL string

	Items []LineItem
}

// Session is the gateway's artifact the client needs to complete payment.
type Session struct {
	// ID is the gateway's identifier for the session.
	ID string

	// PaymentSessionID is the token handed to the gateway's client SDK,
	// when the gateway issues one separately from the session ID.
	PaymentSessionID string

	// Status as reported by the gateway (e.g. "ACTIVE", "open").
	Status string

	// Raw is the gateway's response payload, persisted on the order
	// verbatim.
	Raw json.RawMessage
}
