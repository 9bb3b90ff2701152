package order

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotReady          = errors.New("order is not ready for payment")
	ErrAlreadyPaid       = errors.New("order is already paid")
	ErrStockConflict     = errors.New("insufficient stock at capture time")
	ErrForbidden         = errors.New("order does not belong to customer")
)
