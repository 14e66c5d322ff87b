package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickzshop/checkout/internal/auth"
	"github.com/kickzshop/checkout/internal/domain"
)

const testSecret = "test-secret-key"

func TestAuth(t *testing.T) {
	var gotUserID int64
	var gotOK bool
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, gotOK = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token passes and exposes the user ID", func(t *testing.T) {
		token, err := auth.GenerateToken(testSecret, 42, "Arjun Mehta", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/orders/X", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, gotOK)
		assert.Equal(t, int64(42), gotUserID)
	})

	t.Run("missing header is rejected with a JSON 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/orders/X", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Authentication required", body["message"])
	})

	t.Run("tampered token is rejected", func(t *testing.T) {
		token, err := auth.GenerateToken("some-other-secret", 42, "Arjun Mehta", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/orders/X", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generates an ID when none is supplied", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("reuses the upstream ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "upstream-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "upstream-123", seen)
	})
}

func TestErrorCodeToHTTPStatus(t *testing.T) {
	assert.Equal(t, 422, ErrorCodeToHTTPStatus(domain.EINVALID))
	assert.Equal(t, 404, ErrorCodeToHTTPStatus(domain.ENOTFOUND))
	assert.Equal(t, 401, ErrorCodeToHTTPStatus(domain.EUNAUTHORIZED))
	assert.Equal(t, 402, ErrorCodeToHTTPStatus(domain.EPAYMENT))
	assert.Equal(t, 409, ErrorCodeToHTTPStatus(domain.ECONFLICT))
	assert.Equal(t, 500, ErrorCodeToHTTPStatus(domain.EINTERNAL))
	assert.Equal(t, 500, ErrorCodeToHTTPStatus("mystery"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"), "burst exhausted")
	assert.True(t, rl.Allow("5.6.7.8"), "other clients are unaffected")
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", GetClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", GetClientIP(req))
}
