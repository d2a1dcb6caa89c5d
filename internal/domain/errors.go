package domain

import "errors"

// Business-rule sentinels. Handlers map these to HTTP status codes with
// errors.Is; usecases wrap them with context via fmt.Errorf("%w: ...").
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")

	// InvalidState family: a transition was attempted from a state that
	// forbids it.
	ErrInvalidState             = errors.New("invalid state transition")
	ErrCancellationWindowClosed = errors.New("cancellation window closed")
	ErrReturnWindowExpired      = errors.New("return window expired")
	ErrDuplicateReturn          = errors.New("return already exists for this order")

	// Cart / checkout
	ErrOutOfStock        = errors.New("out of stock")
	ErrItemNotFound      = errors.New("item not found in cart")
	ErrInsufficientStock = errors.New("insufficient stock")

	// Coupons
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponExpired      = errors.New("coupon expired or exhausted")
	ErrMinimumOrderNotMet = errors.New("minimum order amount not met")

	// Payments
	ErrInvalidPaymentSignature = errors.New("invalid payment signature")
)
