package httptransport

import "time"

type ProcessPaymentRequest struct {
	OrderID       int64   `json:"orderId"`
	UserID        string  `json:"userId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency,omitempty"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
}

type RefundPaymentRequest struct {
	// Amount of zero refunds the full remaining balance.
	Amount float64 `json:"amount,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

type PaymentResponse struct {
	Payment PaymentDTO `json:"payment"`
}

type RefundResponse struct {
	Refund RefundDTO `json:"refund"`
}

type ListPaymentsResponse struct {
	Payments   []PaymentDTO  `json:"payments"`
	Pagination PaginationDTO `json:"pagination"`
}

type PaymentDTO struct {
	ID            string      `json:"id"`
	OrderID       int64       `json:"orderId"`
	UserID        string      `json:"userId"`
	Amount        float64     `json:"amount"`
	Currency      string      `json:"currency"`
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	Status        string      `json:"status"`
	FailureReason string      `json:"failureReason,omitempty"`
	ProcessedAt   *time.Time  `json:"processedAt,omitempty"`
	Refunds       []RefundDTO `json:"refunds"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type RefundDTO struct {
	ID        string    `json:"id"`
	PaymentID string    `json:"paymentId"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PaginationDTO struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
