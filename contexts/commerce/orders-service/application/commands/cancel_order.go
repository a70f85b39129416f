package commands

import (
	"context"
	"log/slog"
	"time"

	application "shopstream/contexts/commerce/orders-service/application"
	"shopstream/contexts/commerce/orders-service/domain/entities"
	domainerrors "shopstream/contexts/commerce/orders-service/domain/errors"
	"shopstream/contexts/commerce/orders-service/ports"
	"shopstream/internal/shared/events"
)

type CancelOrderCommand struct {
	OrderID int64
	// UserID scopes the cancellation to the owning user; empty is elevated.
	UserID string
}

// CancelOrderUseCase cancels an order. Cancellation is always user/business
// initiated, so the resulting ORDER_CANCELLED event is published
// unconditionally; the payments service reacts to it with automatic refunds.
type CancelOrderUseCase struct {
	Orders    ports.OrderRepository
	Publisher ports.OrderEventPublisher
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (u CancelOrderUseCase) Execute(ctx context.Context, cmd CancelOrderCommand) (entities.Order, error) {
	logger := application.ResolveLogger(u.Logger)

	existing, err := u.Orders.GetOrder(ctx, cmd.OrderID, cmd.UserID)
	if err != nil {
		return entities.Order{}, err
	}
	if !existing.Status.Cancellable() {
		logger.Warn("rejected cancellation of finalized order",
			"event", "order_cancel_rejected",
			"module", "commerce/orders-service",
			"layer", "application",
			"order_id", cmd.OrderID,
			"status", string(existing.Status),
		)
		return entities.Order{}, domainerrors.ErrOrderNotCancellable
	}

	cancelled, err := u.Orders.UpdateOrderStatus(ctx, cmd.OrderID, cmd.UserID, entities.OrderStatusCancelled, u.now())
	if err != nil {
		return entities.Order{}, err
	}

	if err := u.Publisher.PublishOrderEvent(ctx, events.TypeOrderCancelled, cancelled); err != nil {
		logger.Error("order cancelled event publish failed",
			"event", "order_cancel_publish_failed",
			"module", "commerce/orders-service",
			"layer", "application",
			"order_id", cmd.OrderID,
			"error", err.Error(),
		)
	}

	logger.Info("order cancelled",
		"event", "order_cancelled",
		"module", "commerce/orders-service",
		"layer", "application",
		"order_id", cmd.OrderID,
	)
	return cancelled, nil
}

func (u CancelOrderUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
