package errors

import "errors"

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrInvalidOrderStatus  = errors.New("invalid order status")
	ErrOrderNotCancellable = errors.New("cannot cancel order in current status")
	ErrInvalidOrderRequest = errors.New("invalid order request")
	ErrEmptyOrder          = errors.New("order has no items")
)
