package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "shopstream/contexts/commerce/payments-service/application"
	"shopstream/contexts/commerce/payments-service/application/commands"
	"shopstream/contexts/commerce/payments-service/ports"
	"shopstream/internal/platform/metrics"
	"shopstream/internal/shared/events"
)

const defaultPaymentsConsumerGroup = "payments-events"

// cancellationRefundReason is recorded on refunds issued in reaction to an
// order cancellation event.
const cancellationRefundReason = "Order cancellation - automatic refund"

// PaymentEventConsumer reacts to order events. Order cancellations trigger an
// automatic refund of whatever balance remains; order creations and status
// updates are acknowledged without side effects, which is what keeps the
// orders/payments publish-consume loop from feeding itself.
type PaymentEventConsumer struct {
	Subscriber ports.EventSubscriber
	Payments   ports.PaymentRepository
	Refund     commands.RefundPaymentUseCase
	Dedup      ports.EventDedupStore
	// ServiceName is this service's origin identity, compared against the
	// envelope's publishedBy tag.
	ServiceName   string
	ConsumerGroup string

	OrderTopic string

	Logger *slog.Logger
}

func (c PaymentEventConsumer) Start(ctx context.Context) error {
	group := c.ConsumerGroup
	if group == "" {
		group = defaultPaymentsConsumerGroup
	}
	return c.Subscriber.Subscribe(ctx, c.OrderTopic, group, func(ctx context.Context, msg ports.BusMessage) error {
		return c.handleMessage(ctx, msg)
	})
}

func (c PaymentEventConsumer) handleMessage(ctx context.Context, msg ports.BusMessage) error {
	logger := application.ResolveLogger(c.Logger)
	started := time.Now()

	var envelope events.Envelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		// Malformed payloads are never retried; retrying cannot fix them.
		metrics.EventsMalformedTotal.WithLabelValues(c.ServiceName).Inc()
		logger.Error("dropping malformed event payload",
			"event", "payment_consumer_malformed_payload",
			"module", "commerce/payments-service",
			"layer", "worker",
			"topic", c.OrderTopic,
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
		// An absent publishedBy is treated as external for backward
		// compatibility.
		metrics.EventsSelfSuppressedTotal.WithLabelValues(c.ServiceName).Inc()
		logger.Debug("suppressed self-originated event",
			"event", "payment_consumer_self_suppressed",
			"module", "commerce/payments-service",
			"layer", "worker",
			"topic", c.OrderTopic,
			"event_type", envelope.EventType,
			"order_id", envelope.OrderID,
		)
		c.Dedup.MarkProcessed(envelope)
		return nil
	}

	if err := c.handleEvent(ctx, envelope); err != nil {
		// Not marked processed: transport redelivery retries it.
		metrics.EventHandlerFailuresTotal.WithLabelValues(c.ServiceName).Inc()
		return err
	}

	fingerprint := c.Dedup.MarkProcessed(envelope)
	metrics.EventsConsumedTotal.WithLabelValues(c.OrderTopic, envelope.EventType).Inc()
	metrics.EventHandleDuration.Observe(time.Since(started).Seconds())
	logger.Info("event processed",
		"event", "payment_consumer_event_processed",
		"module", "commerce/payments-service",
		"layer", "worker",
		"topic", c.OrderTopic,
		"event_type", envelope.EventType,
		"order_id", envelope.OrderID,
		"fingerprint", fingerprint,
	)
	return nil
}

func (c PaymentEventConsumer) handleEvent(ctx context.Context, envelope events.Envelope) error {
	logger := application.ResolveLogger(c.Logger)

	switch envelope.EventType {
	case events.TypeOrderCreated:
		// Payment is initiated by the explicit payment request, not by the
		// creation broadcast.
		logger.Info("order created, awaiting payment request",
			"event", "payment_consumer_order_created",
			"module", "commerce/payments-service",
			"layer", "worker",
			"order_id", envelope.OrderID,
			"user_id", envelope.UserID,
		)
		return nil
	case events.TypeOrderCancelled:
		return c.refundForCancellation(ctx, envelope)
	case events.TypeOrderStatusUpdated:
		// Observed for visibility only. Reacting here would close the
		// choreography loop back toward the orders service.
		logger.Info("order status update observed",
			"event", "payment_consumer_order_status_observed",
			"module", "commerce/payments-service",
			"layer", "worker",
			"order_id", envelope.OrderID,
			"status", envelope.Status,
		)
		return nil
	default:
		logger.Info("unhandled event type ignored",
			"event", "payment_consumer_unhandled_event",
			"module", "commerce/payments-service",
			"layer", "worker",
			"event_type", envelope.EventType,
			"order_id", envelope.OrderID,
		)
		return nil
	}
}

func (c PaymentEventConsumer) refundForCancellation(ctx context.Context, envelope events.Envelope) error {
	logger := application.ResolveLogger(c.Logger)

	// Every captured payment on the order is returned, not just the latest
	// row. A failed retry attempt must not shadow an earlier capture.
	payments, err := c.Payments.ListCompletedPaymentsByOrder(ctx, envelope.OrderID)
	if err != nil {
		return err
	}
	if len(payments) == 0 {
		// Order was cancelled before any payment was captured.
		logger.Info("no completed payment for cancelled order",
			"event", "payment_consumer_no_payment",
			"module", "commerce/payments-service",
			"layer", "worker",
			"order_id", envelope.OrderID,
		)
		return nil
	}

	for _, payment := range payments {
		remaining := payment.RefundableAmount()
		if remaining <= 0 {
			logger.Info("cancelled order payment has nothing left to refund",
				"event", "payment_consumer_nothing_to_refund",
				"module", "commerce/payments-service",
				"layer", "worker",
				"order_id", envelope.OrderID,
				"payment_id", payment.ID,
			)
			continue
		}

		refund, err := c.Refund.Execute(ctx, commands.RefundPaymentCommand{
			PaymentID: payment.ID,
			Amount:    remaining,
			Reason:    cancellationRefundReason,
		})
		if err != nil {
			return err
		}

		logger.Info("automatic refund issued for cancelled order",
			"event", "payment_consumer_auto_refund",
			"module", "commerce/payments-service",
			"layer", "worker",
			"order_id", envelope.OrderID,
			"payment_id", payment.ID,
			"refund_id", refund.ID,
			"amount", refund.Amount,
		)
	}
	return nil
}
