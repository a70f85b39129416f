package kafkaadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"shopstream/contexts/commerce/orders-service/domain/entities"
	"shopstream/contexts/commerce/orders-service/ports"
	"shopstream/internal/platform/metrics"
	"shopstream/internal/shared/events"
)

// Producer publishes the orders service's events. Every envelope is stamped
// with the service identity (publishedBy) and a fresh emission timestamp
// before it reaches the bus; the timestamp doubles as the consumer-side
// dedup disambiguator.
type Producer struct {
	Bus         ports.EventBus
	ServiceName string

	OrderTopic     string
	InventoryTopic string
	PaymentTopic   string

	Clock  ports.Clock
	Logger *slog.Logger

	connectOnce sync.Once
	connectErr  error
}

// connect verifies the transport once and caches the outcome for the process
// lifetime, mirroring a broker client's lazy connection establishment.
func (p *Producer) connect() error {
	p.connectOnce.Do(func() {
		if p.Bus == nil {
			p.connectErr = errors.New("event bus is not configured")
		}
	})
	return p.connectErr
}

func (p *Producer) PublishOrderEvent(ctx context.Context, eventType string, order entities.Order) error {
	envelope := events.Envelope{
		EventType:   eventType,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      string(order.Status),
		Amount:      order.TotalAmount,
		Timestamp:   p.timestamp(),
		PublishedBy: p.ServiceName,
		Order:       snapshotPtr(order),
	}
	return p.publish(ctx, p.OrderTopic, strconv.FormatInt(order.ID, 10), envelope)
}

func (p *Producer) PublishInventoryReservation(ctx context.Context, order entities.Order) error {
	items := make([]events.ReservationItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, events.ReservationItem{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			ProductName: item.ProductName,
		})
	}
	envelope := events.Envelope{
		EventType:   events.TypeInventoryReserveRequested,
		OrderID:     order.ID,
		Timestamp:   p.timestamp(),
		PublishedBy: p.ServiceName,
		Items:       items,
	}
	return p.publish(ctx, p.InventoryTopic, strconv.FormatInt(order.ID, 10), envelope)
}

func (p *Producer) PublishPaymentRequest(ctx context.Context, order entities.Order, paymentMethod string) error {
	if paymentMethod == "" {
		paymentMethod = "credit_card"
	}
	envelope := events.Envelope{
		EventType:   events.TypePaymentRequested,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Amount:      order.TotalAmount,
		Timestamp:   p.timestamp(),
		PublishedBy: p.ServiceName,
		Payment: &events.PaymentSnapshot{
			OrderID:       order.ID,
			UserID:        order.UserID,
			Amount:        order.TotalAmount,
			PaymentMethod: paymentMethod,
		},
	}
	return p.publish(ctx, p.PaymentTopic, strconv.FormatInt(order.ID, 10), envelope)
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
		p.Logger.Info("order event published",
			"event", "order_event_published",
			"module", "commerce/orders-service",
			"layer", "adapter",
			"topic", topic,
			"event_type", envelope.EventType,
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

func snapshotPtr(order entities.Order) *events.OrderSnapshot {
	snapshot := order.Snapshot()
	return &snapshot
}
