package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeConfig contains configuration for the Stripe provider.
type StripeConfig struct {
	// APIKey is the Stripe secret key (sk_test_... or sk_live_...)
	APIKey string
}

// Validate checks that required configuration is present.
func (c *StripeConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("stripe: API key is required")
	}
	return nil
}

// IsTestMode returns true if using test mode API keys.
func (c *StripeConfig) IsTestMode() bool {
	return strings.HasPrefix(c.APIKey, "sk_test_")
}

// StripeProvider implements Provider using Stripe Checkout Sessions.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider creates a Stripe payment provider.
func NewStripeProvider(config StripeConfig) (*StripeProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	api := &client.API{}
	api.Init(config.APIKey, nil)

	return &StripeProvider{api: api}, nil
}

// CreatePaymentSession creates a Stripe Checkout Session for the order.
// The order code travels as the session's client reference ID so later
// settlement flows can correlate the two.
func (p *StripeProvider) CreatePaymentSession(ctx context.Context, params SessionParams) (*Session, error) {
	currency := strings.ToLower(params.Currency)

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.Items))
	for _, it := range params.Items {
		name := it.Name
		if name == "" {
			name = fmt.Sprintf("Item %d", it.ID)
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(it.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(it.UnitPrice),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(name),
				},
			},
		})
	}
	if len(lineItems) == 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(params.AmountMinor),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Order " + params.OrderID),
				},
			},
		})
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(params.OrderID),
		CustomerEmail:     stripe.String(params.Customer.Email),
		SuccessURL:        stripe.String(params.ReturnURL),
		CancelURL:         stripe.String(params.ReturnURL),
		LineItems:         lineItems,
	}
	sessionParams.Context = ctx

	sess, err := p.api.CheckoutSessions.New(sessionParams)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			payload, _ := json.Marshal(stripeErr)
			return nil, &SessionError{
				StatusCode: stripeErr.HTTPStatusCode,
				Message:    stripeErr.Msg,
				Payload:    payload,
			}
		}
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("stripe: encode session response: %w", err)
	}

	return &Session{
		ID:               sess.ID,
		PaymentSessionID: sess.ClientSecret,
		Status:           string(sess.Status),
		Raw:              raw,
	}, nil
}
