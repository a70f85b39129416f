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

type UpdateOrderStatusCommand struct {
	OrderID int64
	Status  entities.OrderStatus
	// UserID scopes the update to the owning user; empty means a
	// system/event-driven call with elevated context.
	UserID string
	// FromEvent marks transitions triggered by a consumed event. They must
	// not re-publish a status event, or the publish/consume cycle never
	// terminates.
	FromEvent bool
	// SuppressPublish skips publication for caller-specific reasons that are
	// not event-driven.
	SuppressPublish bool
}

// UpdateOrderStatusUseCase is the order status transition guard. It validates
// the requested status, converges no-op transitions without touching storage,
// and decides whether the change is published downstream.
type UpdateOrderStatusUseCase struct {
	Orders    ports.OrderRepository
	Publisher ports.OrderEventPublisher
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (u UpdateOrderStatusUseCase) Execute(ctx context.Context, cmd UpdateOrderStatusCommand) (entities.Order, error) {
	logger := application.ResolveLogger(u.Logger)

	if !cmd.Status.Valid() {
		logger.Warn("rejected status update with value outside the status set",
			"event", "order_status_invalid",
			"module", "commerce/orders-service",
			"layer", "application",
			"order_id", cmd.OrderID,
			"status", string(cmd.Status),
		)
		return entities.Order{}, domainerrors.ErrInvalidOrderStatus
	}

	current, err := u.Orders.GetOrder(ctx, cmd.OrderID, cmd.UserID)
	if err != nil {
		return entities.Order{}, err
	}

	// No-op convergence guard: a request for the current status performs no
	// write and no publication. This is what stops a redelivered causal event
	// from cascading into fresh publications.
	if current.Status == cmd.Status {
		logger.Info("order status unchanged, skipping update",
			"event", "order_status_noop",
			"module", "commerce/orders-service",
			"layer", "application",
			"order_id", cmd.OrderID,
			"status", string(cmd.Status),
		)
		return current, nil
	}

	updated, err := u.Orders.UpdateOrderStatus(ctx, cmd.OrderID, cmd.UserID, cmd.Status, u.now())
	if err != nil {
		return entities.Order{}, err
	}

	if !cmd.FromEvent && !cmd.SuppressPublish {
		// State is already committed; a publish failure is logged and the
		// event is lost rather than the mutation reverted.
		if err := u.Publisher.PublishOrderEvent(ctx, events.TypeOrderStatusUpdated, updated); err != nil {
			logger.Error("order status event publish failed",
				"event", "order_status_publish_failed",
				"module", "commerce/orders-service",
				"layer", "application",
				"order_id", cmd.OrderID,
				"status", string(cmd.Status),
				"error", err.Error(),
			)
		}
	}

	logger.Info("order status updated",
		"event", "order_status_updated",
		"module", "commerce/orders-service",
		"layer", "application",
		"order_id", cmd.OrderID,
		"status", string(cmd.Status),
		"from_event", cmd.FromEvent,
		"suppress_publish", cmd.SuppressPublish,
	)
	return updated, nil
}

func (u UpdateOrderStatusUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
