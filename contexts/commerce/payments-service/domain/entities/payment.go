package entities

import (
	"time"

	"shopstream/internal/shared/events"
)

// PaymentStatus is the closed set of payment lifecycle states.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// RefundStatus is the closed set of refund lifecycle states.
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "PENDING"
	RefundStatusCompleted RefundStatus = "COMPLETED"
	RefundStatusFailed    RefundStatus = "FAILED"
)

type Payment struct {
	ID            string
	OrderID       int64
	UserID        string
	Amount        float64
	Currency      string
	PaymentMethod string
	Status        PaymentStatus
	ExternalID    string
	FailureReason string
	ProcessedAt   *time.Time
	Refunds       []Refund
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Refund struct {
	ID         string
	PaymentID  string
	Amount     float64
	Reason     string
	Status     RefundStatus
	ExternalID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CompletedRefundTotal sums the amounts of refunds that reached COMPLETED.
// Pending and failed refunds do not reduce the refundable balance.
func (p Payment) CompletedRefundTotal() float64 {
	var total float64
	for _, r := range p.Refunds {
		if r.Status == RefundStatusCompleted {
			total += r.Amount
		}
	}
	return total
}

// RefundableAmount is the remaining balance a new refund may claim.
func (p Payment) RefundableAmount() float64 {
	return p.Amount - p.CompletedRefundTotal()
}

// Refundable reports whether the payment can accept a refund at all. Only
// captured money can be returned, and a fully refunded payment is final.
func (p Payment) Refundable() bool {
	return p.Status == PaymentStatusCompleted
}

// Snapshot renders the payment as the wire payload carried on payment events.
func (p Payment) Snapshot() events.PaymentSnapshot {
	return events.PaymentSnapshot{
		ID:            p.ID,
		OrderID:       p.OrderID,
		UserID:        p.UserID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: p.PaymentMethod,
		Status:        string(p.Status),
		FailureReason: p.FailureReason,
	}
}

// Snapshot renders the refund as the wire payload carried on refund events.
func (r Refund) Snapshot() events.RefundSnapshot {
	return events.RefundSnapshot{
		ID:        r.ID,
		PaymentID: r.PaymentID,
		Amount:    r.Amount,
		Reason:    r.Reason,
		Status:    string(r.Status),
	}
}
