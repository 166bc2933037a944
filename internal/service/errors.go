package service

import "errors"

var (
	ErrInvalidSignature = errors.New("payment signature mismatch")
	// ErrPaymentMismatch means a validly signed payment belongs to another order.
	ErrPaymentMismatch = errors.New("payment does not belong to this order")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrAmountMismatch  = errors.New("amount does not match the order total")
	ErrOrderPaid       = errors.New("order is already paid")
	ErrInvalidStatus   = errors.New("invalid order status")
	// ErrPaymentsDisabled is returned while gateway credentials are missing.
	ErrPaymentsDisabled = errors.New("payments are not configured")

	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrUnknownColor     = errors.New("product has no such color")
	ErrCartItemNotFound = errors.New("cart item not found")

	ErrInvalidSignup = errors.New("name and a valid email are required")
	ErrInvalidOTP    = errors.New("invalid or expired otp")
)
