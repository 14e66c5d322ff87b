package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// ErrUserNotFound is returned when the requesting user does not exist.
var ErrUserNotFound = &Error{Code: ENOTFOUND, Message: "User not found"}

// User is the shopper placing the order. Read-only during checkout;
// account management happens elsewhere.
type User struct {
	ID           int64
	Name         string
	Email        string
	MobileNumber string
	CreatedAt    pgtype.Timestamptz
}

// UserReader provides read access to users.
type UserReader interface {
	GetUser(ctx context.Context, id int64) (*User, error)
}
