package kafkaadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"shopstream/contexts/commerce/payments-service/domain/entities"
	"shopstream/contexts/commerce/payments-service/ports"
	"shopstream/internal/platform/metrics"
	"shopstream/internal/shared/events"
)

// Producer publishes the payments service's events. Every envelope is stamped
// with the service identity (publishedBy) and a fresh emission timestamp
// before it reaches the bus.
type Producer struct {
	Bus         ports.EventBus
	ServiceName string

	PaymentTopic string
	RefundTopic  string

	Clock  ports.Clock
	Logger *slog.Logger

	connectOnce sync.Once
	connectErr  error
}

func (p *Producer) connect() error {
	p.connectOnce.Do(func() {
		if p.Bus == nil {
			p.connectErr = errors.New("event bus is not configured")
		}
	})
	return p.connectErr
}

func (p *Producer) PublishPaymentEvent(ctx context.Context, eventType string, payment entities.Payment) error {
	snapshot := payment.Snapshot()
	envelope := events.Envelope{
		EventType:   eventType,
		OrderID:     payment.OrderID,
		PaymentID:   payment.ID,
		UserID:      payment.UserID,
		Status:      string(payment.Status),
		Amount:      payment.Amount,
		Timestamp:   p.timestamp(),
		PublishedBy: p.ServiceName,
		Payment:     &snapshot,
	}
	return p.publish(ctx, p.PaymentTopic, payment.ID, envelope)
}

func (p *Producer) PublishRefundEvent(ctx context.Context, eventType string, payment entities.Payment, refund entities.Refund) error {
	snapshot := refund.Snapshot()
	envelope := events.Envelope{
		EventType:   eventType,
		OrderID:     payment.OrderID,
		PaymentID:   payment.ID,
		RefundID:    refund.ID,
		UserID:      payment.UserID,
		Status:      string(refund.Status),
		Amount:      refund.Amount,
		Timestamp:   p.timestamp(),
		PublishedBy: p.ServiceName,
		Refund:      &snapshot,
	}
	return p.publish(ctx, p.RefundTopic, refund.ID, envelope)
}

func (p *Producer) publish(ctx context.Context, topic string, key string, envelope events.Envelope) error {
	if err := p.connect(); err != nil {
		return err
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("encode %s envelope: %w", envelope.EventType, err)
	}
	if err := p.Bus.Publish(ctx, topic, ports.BusMessage{Key: key, Value: payload}); err != nil {
		return fmt.Errorf("publish %s to %s: %w", envelope.EventType, topic, err)
	}

	metrics.EventsPublishedTotal.WithLabelValues(topic, envelope.EventType).Inc()
	if p.Logger != nil {
		p.Logger.Info("payment event published",
			"event", "payment_event_published",
			"module", "commerce/payments-service",
			"layer", "adapter",
			"topic", topic,
			"event_type", envelope.EventType,
			"payment_id", envelope.PaymentID,
			"order_id", envelope.OrderID,
		)
	}
	return nil
}

func (p *Producer) timestamp() string {
	if p.Clock != nil {
		return events.FormatTimestamp(p.Clock.Now())
	}
	return events.FormatTimestamp(time.Now())
}
