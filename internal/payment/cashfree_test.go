package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSessionParams() SessionParams {
	return SessionParams{
		OrderID:     "KICKZ-3-AB12CD34EF",
		AmountMinor: 25000,
		Currency:    "INR",
		Customer: CustomerDetails{
			CustomerID: "3",
			Name:       "Arjun Mehta",
			Phone:      "+919876543210",
			Email:      "arjun@example.com",
		},
		ReturnURL: "https://shop.example.com/order/confirm?order_code=KICKZ-3-AB12CD34EF",
		Items: []LineItem{
			{ID: 1, ProductVariantID: 41, UnitPrice: 10000, Quantity: 2, Name: "Air Max 95"},
			{ID: 2, UnitPrice: 5000, Quantity: 1},
		},
	}
}

func TestCashfreeCreatePaymentSession(t *testing.T) {
	t.Run("posts the order payload and decodes the session", func(t *testing.T) {
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/orders", r.URL.Path)
			assert.Equal(t, "app-id", r.Header.Get("x-client-id"))
			assert.Equal(t, "app-secret", r.Header.Get("x-client-secret"))
			assert.Equal(t, "2023-08-01", r.Header.Get("x-api-version"))

			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &gotBody))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"cf_order_id": 2149460581,
				"order_id": "KICKZ-3-AB12CD34EF",
				"order_status": "ACTIVE",
				"payment_session_id": "session_a1b2c3"
			}`))
		}))
		defer srv.Close()

		provider, err := NewCashfreeProvider(CashfreeConfig{
			ClientID:     "app-id",
			ClientSecret: "app-secret",
			BaseURL:      srv.URL,
		})
		require.NoError(t, err)

		sess, err := provider.CreatePaymentSession(context.Background(), testSessionParams())
		require.NoError(t, err)

		assert.Equal(t, "2149460581", sess.ID)
		assert.Equal(t, "session_a1b2c3", sess.PaymentSessionID)
		assert.Equal(t, "ACTIVE", sess.Status)
		assert.NotEmpty(t, sess.Raw)

		assert.Equal(t, "KICKZ-3-AB12CD34EF", gotBody["order_id"])
		assert.Equal(t, 250.0, gotBody["order_amount"])
		assert.Equal(t, "INR", gotBody["order_currency"])

		customer := gotBody["customer_details"].(map[string]any)
		assert.Equal(t, "arjun@example.com", customer["customer_email"])
		assert.Equal(t, "+919876543210", customer["customer_phone"])

		meta := gotBody["order_meta"].(map[string]any)
		assert.Contains(t, meta["return_url"], "order_code=KICKZ-3-AB12CD34EF")

		items := gotBody["items"].([]any)
		require.Len(t, items, 2)
		first := items[0].(map[string]any)
		assert.Equal(t, 100.0, first["price"])
		assert.Equal(t, 2.0, first["quantity"])
	})

	t.Run("returns a SessionError with the gateway payload on rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"order_amount is invalid","code":"order_amount_invalid","type":"invalid_request_error"}`))
		}))
		defer srv.Close()

		provider, err := NewCashfreeProvider(CashfreeConfig{
			ClientID:     "app-id",
			ClientSecret: "app-secret",
			BaseURL:      srv.URL,
		})
		require.NoError(t, err)

		_, err = provider.CreatePaymentSession(context.Background(), testSessionParams())
		var sessionErr *SessionError
		require.ErrorAs(t, err, &sessionErr)
		assert.Equal(t, http.StatusBadRequest, sessionErr.StatusCode)
		assert.Equal(t, "order_amount is invalid", sessionErr.Message)
		assert.Contains(t, string(sessionErr.Payload), "order_amount_invalid")
	})

	t.Run("requires credentials", func(t *testing.T) {
		_, err := NewCashfreeProvider(CashfreeConfig{ClientID: "app-id"})
		require.Error(t, err)
	})
}

func TestFormatMajorUnits(t *testing.T) {
	assert.Equal(t, "250.00", formatMajorUnits(25000))
	assert.Equal(t, "125.50", formatMajorUnits(12550))
	assert.Equal(t, "0.05", formatMajorUnits(5))
	assert.Equal(t, "0.00", formatMajorUnits(0))
}

func TestFactory(t *testing.T) {
	f := NewFactory()
	mock := NewMockProvider()
	f.Register(GatewayCashfree, mock)

	p, err := f.Provider(GatewayCashfree)
	require.NoError(t, err)
	assert.Same(t, Provider(mock), p)

	_, err = f.Provider("paypal")
	assert.True(t, errors.Is(err, ErrUnknownGateway))

	f.Register(GatewayStripe, NewMockProvider())
	assert.Equal(t, []string{GatewayCashfree, GatewayStripe}, f.Gateways())
}
