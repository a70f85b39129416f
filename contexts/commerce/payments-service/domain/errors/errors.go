package errors

import "errors"

var (
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrPaymentNotRefundable   = errors.New("payment is not refundable")
	ErrRefundExceedsRemaining = errors.New("refund amount exceeds remaining balance")
	ErrInvalidPaymentRequest  = errors.New("invalid payment request")
	ErrInvalidRefundRequest   = errors.New("invalid refund request")
)
