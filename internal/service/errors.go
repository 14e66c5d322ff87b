package service

import (
	"github.com/kickzshop/checkout/internal/domain"
)

// Checkout errors surfaced to callers. Messages are user-facing.
var (
	ErrUserNotFound        = domain.ErrUserNotFound
	ErrCartNotFound        = domain.ErrCartNotFound
	ErrEmptyCart           = domain.ErrEmptyCart
	ErrOrderNotFound       = domain.ErrOrderNotFound
	ErrOrderCreationFailed = domain.ErrOrderCreationFailed
)
