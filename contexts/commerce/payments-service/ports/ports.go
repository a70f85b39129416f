package ports

import (
	"context"
	"time"

	"shopstream/contexts/commerce/payments-service/domain/entities"
	"shopstream/internal/platform/messaging"
	"shopstream/internal/shared/events"
)

// BusMessage is the raw record consumed from or published to a topic.
type BusMessage = messaging.Message

// PaymentListFilter defines read-side filtering/pagination for payment lists.
type PaymentListFilter struct {
	UserID  string
	OrderID int64
	Status  entities.PaymentStatus
	Page    int
	Limit   int
}

// PaymentRepository owns payment and refund persistence. Reads always return
// the payment with its refunds attached so balance checks see the full
// history.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment entities.Payment) (entities.Payment, error)
	GetPayment(ctx context.Context, paymentID string) (entities.Payment, error)
	ListCompletedPaymentsByOrder(ctx context.Context, orderID int64) ([]entities.Payment, error)
	UpdatePayment(ctx context.Context, payment entities.Payment) (entities.Payment, error)
	ListPayments(ctx context.Context, filter PaymentListFilter) ([]entities.Payment, int64, error)
	CreateRefund(ctx context.Context, refund entities.Refund) (entities.Refund, error)
	UpdateRefund(ctx context.Context, refund entities.Refund) (entities.Refund, error)
}

// GatewayCharge is the provider-side outcome of a charge attempt.
type GatewayCharge struct {
	Success       bool
	ExternalID    string
	FailureReason string
}

// GatewayRefund is the provider-side outcome of a refund attempt.
type GatewayRefund struct {
	Success       bool
	ExternalID    string
	FailureReason string
}

// GatewayClient talks to the external payment provider. A declined charge is
// a normal result, not an error; errors mean the provider was unreachable.
type GatewayClient interface {
	Charge(ctx context.Context, payment entities.Payment) (GatewayCharge, error)
	Refund(ctx context.Context, payment entities.Payment, amount float64) (GatewayRefund, error)
}

// PaymentEventPublisher emits the payments service's outbound events. Every
// published envelope is stamped with this service's identity.
type PaymentEventPublisher interface {
	PublishPaymentEvent(ctx context.Context, eventType string, payment entities.Payment) error
	PublishRefundEvent(ctx context.Context, eventType string, payment entities.Payment, refund entities.Refund) error
}

// EventDedupStore is the per-process idempotency guard consulted before and
// after handling a consumed event.
type EventDedupStore interface {
	IsProcessed(envelope events.Envelope) bool
	MarkProcessed(envelope events.Envelope) string
}

// EventBus publishes raw messages to a topic.
type EventBus interface {
	Publish(ctx context.Context, topic string, msg BusMessage) error
}

// EventSubscriber registers a handler for a topic within a consumer group.
type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler messaging.Handler) error
}

// Clock allows deterministic testing of timestamps and status updates.
type Clock interface {
	Now() time.Time
}

// IDGenerator mints payment and refund identifiers.
type IDGenerator interface {
	NewID() string
}
