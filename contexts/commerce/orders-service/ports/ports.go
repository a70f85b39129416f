package ports

import (
	"context"
	"time"

	"shopstream/contexts/commerce/orders-service/domain/entities"
	"shopstream/internal/platform/messaging"
	"shopstream/internal/shared/events"
)

// BusMessage is the raw record consumed from or published to a topic.
type BusMessage = messaging.Message

// OrderListFilter defines read-side filtering/pagination for order lists.
type OrderListFilter struct {
	UserID string
	Status entities.OrderStatus
	Page   int
	Limit  int
}

// OrderRepository owns order persistence. UserID scoping: an empty userID
// means an unscoped (system/event-driven) access, a non-empty one restricts
// the operation to orders owned by that user.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order entities.Order) (entities.Order, error)
	GetOrder(ctx context.Context, orderID int64, userID string) (entities.Order, error)
	// UpdateOrderStatus persists the new status and returns the updated order.
	UpdateOrderStatus(ctx context.Context, orderID int64, userID string, status entities.OrderStatus, updatedAt time.Time) (entities.Order, error)
	ListOrders(ctx context.Context, filter OrderListFilter) ([]entities.Order, int64, error)
}

// OrderEventPublisher emits the orders service's outbound events. Every
// published envelope is stamped with this service's identity.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, eventType string, order entities.Order) error
	PublishInventoryReservation(ctx context.Context, order entities.Order) error
	PublishPaymentRequest(ctx context.Context, order entities.Order, paymentMethod string) error
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
