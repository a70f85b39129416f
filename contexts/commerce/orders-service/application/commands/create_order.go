package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "shopstream/contexts/commerce/orders-service/application"
	"shopstream/contexts/commerce/orders-service/domain/entities"
	domainerrors "shopstream/contexts/commerce/orders-service/domain/errors"
	"shopstream/contexts/commerce/orders-service/ports"
	"shopstream/internal/shared/events"
)

type CreateOrderItem struct {
	ProductID   int64
	Quantity    int
	Price       float64
	ProductName string
}

type CreateOrderCommand struct {
	UserID          string
	ShippingAddress string
	Items           []CreateOrderItem
	PaymentMethod   string
}

// CreateOrderUseCase creates a PENDING order and kicks off the choreography:
// ORDER_CREATED on the order topic, a reservation request on the inventory
// topic and a payment request on the payment topic. Persistence commits
// first; publication is at-least-once best effort afterwards.
type CreateOrderUseCase struct {
	Orders    ports.OrderRepository
	Publisher ports.OrderEventPublisher
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (u CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderCommand) (entities.Order, error) {
	logger := application.ResolveLogger(u.Logger)

	if strings.TrimSpace(cmd.UserID) == "" || strings.TrimSpace(cmd.ShippingAddress) == "" {
		return entities.Order{}, domainerrors.ErrInvalidOrderRequest
	}
	if len(cmd.Items) == 0 {
		return entities.Order{}, domainerrors.ErrEmptyOrder
	}

	var total float64
	items := make([]entities.OrderItem, 0, len(cmd.Items))
	for _, item := range cmd.Items {
		if item.ProductID <= 0 || item.Quantity <= 0 || item.Price < 0 {
			return entities.Order{}, domainerrors.ErrInvalidOrderRequest
		}
		total += item.Price * float64(item.Quantity)
		items = append(items, entities.OrderItem{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Price:       item.Price,
			ProductName: item.ProductName,
		})
	}

	now := u.now()
	order, err := u.Orders.CreateOrder(ctx, entities.Order{
		UserID:          cmd.UserID,
		Status:          entities.OrderStatusPending,
		TotalAmount:     total,
		ShippingAddress: cmd.ShippingAddress,
		Items:           items,
		OrderedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		logger.Error("order create failed",
			"event", "order_create_failed",
			"module", "commerce/orders-service",
			"layer", "application",
			"user_id", cmd.UserID,
			"error", err.Error(),
		)
		return entities.Order{}, err
	}

	u.publish(ctx, logger, order, cmd.PaymentMethod)

	logger.Info("order created",
		"event", "order_created",
		"module", "commerce/orders-service",
		"layer", "application",
		"order_id", order.ID,
		"user_id", order.UserID,
		"total_amount", order.TotalAmount,
		"item_count", len(order.Items),
	)
	return order, nil
}

// publish emits the three creation events. Each failure is logged and the
// remaining publications still happen; the committed order is never reverted.
func (u CreateOrderUseCase) publish(ctx context.Context, logger *slog.Logger, order entities.Order, paymentMethod string) {
	if err := u.Publisher.PublishOrderEvent(ctx, events.TypeOrderCreated, order); err != nil {
		logger.Error("order created event publish failed",
			"event", "order_create_publish_failed",
			"module", "commerce/orders-service",
			"layer", "application",
			"order_id", order.ID,
			"error", err.Error(),
		)
	}
	if err := u.Publisher.PublishInventoryReservation(ctx, order); err != nil {
		logger.Error("inventory reservation publish failed",
			"event", "order_inventory_publish_failed",
			"module", "commerce/orders-service",
			"layer", "application",
			"order_id", order.ID,
			"error", err.Error(),
		)
	}
	if err := u.Publisher.PublishPaymentRequest(ctx, order, paymentMethod); err != nil {
		logger.Error("payment request publish failed",
			"event", "order_payment_publish_failed",
			"module", "commerce/orders-service",
			"layer", "application",
			"order_id", order.ID,
			"error", err.Error(),
		)
	}
}

func (u CreateOrderUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
