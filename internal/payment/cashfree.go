package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	cashfreeSandboxURL  = "https://sandbox.cashfree.com/pg"
	cashfreeAPIVersion  = "2023-08-01"
	cashfreeHTTPTimeout = 30 * time.Second
)

// CashfreeConfig contains configuration for the Cashfree provider.
type CashfreeConfig struct {
	// ClientID is the Cashfree app ID.
	ClientID string

	// ClientSecret is the Cashfree secret key.
	ClientSecret string

	// BaseURL overrides the API endpoint. Defaults to the sandbox
	// environment; point it at https://api.cashfree.com/pg for production.
	BaseURL string

	// APIVersion is sent as x-api-version. Defaults to 2023-08-01.
	APIVersion string

	// Timeout for API calls. Defaults to 30s.
	Timeout time.Duration
}

// Validate checks that required configuration is present.
func (c *CashfreeConfig) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("cashfree: client ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("cashfree: client secret is required")
	}
	return nil
}

// CashfreeProvider implements Provider using the Cashfree Payments API.
type CashfreeProvider struct {
	config CashfreeConfig
	client *http.Client
}

// NewCashfreeProvider creates a Cashfree payment provider.
func NewCashfreeProvider(config CashfreeConfig) (*CashfreeProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.BaseURL == "" {
		config.BaseURL = cashfreeSandboxURL
	}
	if config.APIVersion == "" {
		config.APIVersion = cashfreeAPIVersion
	}
	if config.Timeout == 0 {
		config.Timeout = cashfreeHTTPTimeout
	}

	return &CashfreeProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}, nil
}

type cashfreeCustomer struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type cashfreeOrderMeta struct {
	ReturnURL string `json:"return_url"`
}

type cashfreeItem struct {
	ID               int64       `json:"id"`
	ProductVariantID int64       `json:"product_variant_id,omitempty"`
	Price            json.Number `json:"price"`
	Quantity         int32       `json:"quantity"`
	Name             string      `json:"name,omitempty"`
}

type cashfreeOrderRequest struct {
	OrderID       string            `json:"order_id"`
	OrderAmount   json.Number       `json:"order_amount"`
	OrderCurrency string            `json:"order_currency"`
	Customer      cashfreeCustomer  `json:"customer_details"`
	OrderMeta     cashfreeOrderMeta `json:"order_meta"`
	Items         []cashfreeItem    `json:"items,omitempty"`
}

type cashfreeOrderResponse struct {
	CFOrderID        json.Number `json:"cf_order_id"`
	OrderID          string      `json:"order_id"`
	OrderStatus      string      `json:"order_status"`
	PaymentSessionID string      `json:"payment_session_id"`
	Message          string      `json:"message"`
}

// CreatePaymentSession creates a Cashfree order, which doubles as the
// payment session the client SDK consumes.
func (p *CashfreeProvider) CreatePaymentSession(ctx context.Context, params SessionParams) (*Session, error) {
	items := make([]cashfreeItem, len(params.Items))
	for i, it := range params.Items {
		items[i] = cashfreeItem{
			ID:               it.ID,
			ProductVariantID: it.ProductVariantID,
			Price:            json.Number(formatMajorUnits(it.UnitPrice)),
			Quantity:         it.Quantity,
			Name:             it.Name,
		}
	}

	reqBody := cashfreeOrderRequest{
		OrderID:       params.OrderID,
		OrderAmount:   json.Number(formatMajorUnits(params.AmountMinor)),
		OrderCurrency: params.Currency,
		Customer: cashfreeCustomer{
			CustomerID:    params.Customer.CustomerID,
			CustomerName:  params.Customer.Name,
			CustomerEmail: params.Customer.Email,
			CustomerPhone: params.Customer.Phone,
		},
		OrderMeta: cashfreeOrderMeta{ReturnURL: params.ReturnURL},
		Items:     items,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("cashfree: failed to marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/orders", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("cashfree: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", p.config.ClientID)
	req.Header.Set("x-client-secret", p.config.ClientSecret)
	req.Header.Set("x-api-version", p.config.APIVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cashfree: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cashfree: failed to read response: %w", err)
	}

	var decoded cashfreeOrderResponse
	if err := json.Unmarshal(body, &decoded); err != nil && resp.StatusCode < 300 {
		return nil, fmt.Errorf("cashfree: failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &SessionError{
			StatusCode: resp.StatusCode,
			Message:    decoded.Message,
			Payload:    json.RawMessage(body),
		}
	}

	return &Session{
		ID:               decoded.CFOrderID.String(),
		PaymentSessionID: decoded.PaymentSessionID,
		Status:           decoded.OrderStatus,
		Raw:              json.RawMessage(body),
	}, nil
}

// formatMajorUnits renders a minor-unit amount as a decimal number
// (12550 -> "125.50"), the shape the Cashfree API expects.
func formatMajorUnits(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
