package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockProvider is a mock payment provider for testing.
// Simulates gateway behavior without calling a remote API.
type MockProvider struct {
	// CreatePaymentSessionFunc allows customizing session creation behavior
	CreatePaymentSessionFunc func(ctx context.Context, params SessionParams) (*Session, error)

	// Sessions stores created sessions keyed by order ID
	Sessions map[string]*Session

	// CallLog tracks method calls for test assertions
	CallLog []string
}

// NewMockProvider creates a new mock payment provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Sessions: make(map[string]*Session),
		CallLog:  []string{},
	}
}

// CreatePaymentSession creates a mock payment session.
func (m *MockProvider) CreatePaymentSession(ctx context.Context, params SessionParams) (*Session, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreatePaymentSession(%s, %d %s)", params.OrderID, params.AmountMinor, params.Currency))

	if m.CreatePaymentSessionFunc != nil {
		return m.CreatePaymentSessionFunc(ctx, params)
	}

	// Default mock behavior: open an active session
	raw, _ := json.Marshal(map[string]any{
		"order_id":           params.OrderID,
		"payment_session_id": "session_" + uuid.New().String(),
		"order_status":       "ACTIVE",
		"created_at":         time.Now().Format(time.RFC3339),
	})

	sess := &Session{
		ID:               "cf_" + uuid.New().String()[:8],
		PaymentSessionID: "session_" + uuid.New().String(),
		Status:           "ACTIVE",
		Raw:              raw,
	}

	m.Sessions[params.OrderID] = sess
	return sess, nil
}

// RejectWith configures the mock to reject every session with the given
// status and diagnostic payload.
func (m *MockProvider) RejectWith(statusCode int, message string, payload []byte) {
	m.CreatePaymentSessionFunc = func(ctx context.Context, params SessionParams) (*Session, error) {
		return nil, &SessionError{StatusCode: statusCode, Message: message, Payload: payload}
	}
}
