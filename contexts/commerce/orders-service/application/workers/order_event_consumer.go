package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "shopstream/contexts/commerce/orders-service/application"
	"shopstream/contexts/commerce/orders-service/application/commands"
	"shopstream/contexts/commerce/orders-service/domain/entities"
	"shopstream/contexts/commerce/orders-service/ports"
	"shopstream/internal/platform/metrics"
	"shopstream/internal/shared/events"
)

const defaultOrdersConsumerGroup = "orders-events"

// OrderEventConsumer reacts to payment, inventory and shipping events by
// driving the order status machine. Every transition it requests is flagged
// FromEvent so the status guard does not publish a fresh status event and
// restart the cycle.
type OrderEventConsumer struct {
	Subscriber   ports.EventSubscriber
	UpdateStatus commands.UpdateOrderStatusUseCase
	Dedup        ports.EventDedupStore
	// ServiceName is this service's origin identity, compared against the
	// envelope's publishedBy tag.
	ServiceName   string
	ConsumerGroup string

	PaymentTopic   string
	InventoryTopic string
	ShippingTopic  string

	Logger *slog.Logger
}

func (c OrderEventConsumer) Start(ctx context.Context) error {
	group := c.ConsumerGroup
	if group == "" {
		group = defaultOrdersConsumerGroup
	}

	for _, topic := range []string{c.PaymentTopic, c.InventoryTopic, c.ShippingTopic} {
		topic := topic
		err := c.Subscriber.Subscribe(ctx, topic, group, func(ctx context.Context, msg ports.BusMessage) error {
			return c.handleMessage(ctx, topic, msg)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c OrderEventConsumer) handleMessage(ctx context.Context, topic string, msg ports.BusMessage) error {
	logger := application.ResolveLogger(c.Logger)
	started := time.Now()

	var envelope events.Envelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		// Malformed payloads are never retried; retrying cannot fix them.
		metrics.EventsMalformedTotal.WithLabelValues(c.ServiceName).Inc()
		logger.Error("dropping malformed event payload",
			"event", "order_consumer_malformed_payload",
			"module", "commerce/orders-service",
			"layer", "worker",
			"topic", topic,
			"key", msg.Key,
			"error", err.Error(),
		)
		return nil
	}

	if c.Dedup.IsProcessed(envelope) {
		metrics.EventsDuplicateTotal.WithLabelValues(c.ServiceName).Inc()
		return nil
	}

	if envelope.PublishedBy == c.ServiceName {
		// Events this service emitted itself (payment/inventory requests on
		// these topics) must not trigger reactions. An absent publishedBy is
		// treated as external for backward compatibility.
		metrics.EventsSelfSuppressedTotal.WithLabelValues(c.ServiceName).Inc()
		logger.Debug("suppressed self-originated event",
			"event", "order_consumer_self_suppressed",
			"module", "commerce/orders-service",
			"layer", "worker",
			"topic", topic,
			"event_type", envelope.EventType,
			"order_id", envelope.OrderID,
		)
		c.Dedup.MarkProcessed(envelope)
		return nil
	}

	if err := c.handleEvent(ctx, topic, envelope); err != nil {
		// Not marked processed: transport redelivery retries it.
		metrics.EventHandlerFailuresTotal.WithLabelValues(c.ServiceName).Inc()
		return err
	}

	fingerprint := c.Dedup.MarkProcessed(envelope)
	metrics.EventsConsumedTotal.WithLabelValues(topic, envelope.EventType).Inc()
	metrics.EventHandleDuration.Observe(time.Since(started).Seconds())
	logger.Info("event processed",
		"event", "order_consumer_event_processed",
		"module", "commerce/orders-service",
		"layer", "worker",
		"topic", topic,
		"event_type", envelope.EventType,
		"order_id", envelope.OrderID,
		"fingerprint", fingerprint,
	)
	return nil
}

func (c OrderEventConsumer) handleEvent(ctx context.Context, topic string, envelope events.Envelope) error {
	switch topic {
	case c.PaymentTopic:
		return c.handlePaymentEvent(ctx, envelope)
	case c.InventoryTopic:
		return c.handleInventoryEvent(ctx, envelope)
	case c.ShippingTopic:
		return c.handleShippingEvent(ctx, envelope)
	default:
		application.ResolveLogger(c.Logger).Warn("event from unknown topic ignored",
			"event", "order_consumer_unknown_topic",
			"module", "commerce/orders-service",
			"layer", "worker",
			"topic", topic,
		)
		return nil
	}
}

func (c OrderEventConsumer) handlePaymentEvent(ctx context.Context, envelope events.Envelope) error {
	switch envelope.EventType {
	case events.TypePaymentCompleted:
		return c.transition(ctx, envelope, entities.OrderStatusConfirmed)
	case events.TypePaymentFailed:
		return c.transition(ctx, envelope, entities.OrderStatusCancelled)
	default:
		c.logUnhandled(envelope, "payment")
		return nil
	}
}

func (c OrderEventConsumer) handleInventoryEvent(ctx context.Context, envelope events.Envelope) error {
	switch envelope.EventType {
	case events.TypeInventoryReserved:
		return c.transition(ctx, envelope, entities.OrderStatusProcessing)
	case events.TypeInventoryInsufficient:
		return c.transition(ctx, envelope, entities.OrderStatusCancelled)
	default:
		c.logUnhandled(envelope, "inventory")
		return nil
	}
}

func (c OrderEventConsumer) handleShippingEvent(ctx context.Context, envelope events.Envelope) error {
	switch envelope.EventType {
	case events.TypeShipmentCreated:
		return c.transition(ctx, envelope, entities.OrderStatusShipped)
	case events.TypeDeliveryCompleted:
		return c.transition(ctx, envelope, entities.OrderStatusDelivered)
	default:
		c.logUnhandled(envelope, "shipping")
		return nil
	}
}

func (c OrderEventConsumer) transition(ctx context.Context, envelope events.Envelope, target entities.OrderStatus) error {
	_, err := c.UpdateStatus.Execute(ctx, commands.UpdateOrderStatusCommand{
		OrderID:   envelope.OrderID,
		Status:    target,
		FromEvent: true,
	})
	return err
}

func (c OrderEventConsumer) logUnhandled(envelope events.Envelope, family string) {
	application.ResolveLogger(c.Logger).Info("unhandled event type ignored",
		"event", "order_consumer_unhandled_event",
		"module", "commerce/orders-service",
		"layer", "worker",
		"family", family,
		"event_type", envelope.EventType,
		"order_id", envelope.OrderID,
	)
}
