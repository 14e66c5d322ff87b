package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kickzshop/checkout/internal/auth"
)

const (
	// UserIDContextKey is the context key for the authenticated user's ID
	UserIDContextKey contextKey = "user_id"

	// UserNameContextKey is the context key for the authenticated user's name
	UserNameContextKey contextKey = "user_name"
)

// Auth validates the Bearer token on the request and stores the
// authenticated user's identity in the context. Requests without a valid
// token get a 401 JSON response.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				respondUnauthorized(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				respondUnauthorized(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDContextKey, claims.UserID)
			ctx = context.WithValue(ctx, UserNameContextKey, claims.Name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the authenticated user's ID from the context.
// The second return is false when the request was not authenticated.
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDContextKey).(int64)
	return id, ok
}

// GetUserName returns the authenticated user's name from the context.
func GetUserName(ctx context.Context) string {
	if name, ok := ctx.Value(UserNameContextKey).(string); ok {
		return name
	}
	return ""
}
