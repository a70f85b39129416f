package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"shopstream/contexts/commerce/payments-service/adapters/memory"
	"shopstream/contexts/commerce/payments-service/application/commands"
	"shopstream/contexts/commerce/payments-service/domain/entities"
	"shopstream/contexts/commerce/payments-service/ports"
	"shopstream/internal/shared/events"
	"shopstream/internal/shared/idempotency"
)

type stubGateway struct {
	refundCalls int
}

func (g *stubGateway) Charge(_ context.Context, _ entities.Payment) (ports.GatewayCharge, error) {
	return ports.GatewayCharge{Success: true, ExternalID: "ch_test"}, nil
}

func (g *stubGateway) Refund(_ context.Context, _ entities.Payment, _ float64) (ports.GatewayRefund, error) {
	g.refundCalls++
	return ports.GatewayRefund{Success: true, ExternalID: "re_test"}, nil
}

type recordedEvent struct {
	eventType string
	refundID  string
}

type spyPublisher struct {
	events []recordedEvent
}

func (p *spyPublisher) PublishPaymentEvent(_ context.Context, eventType string, _ entities.Payment) error {
	p.events = append(p.events, recordedEvent{eventType: eventType})
	return nil
}

func (p *spyPublisher) PublishRefundEvent(_ context.Context, eventType string, _ entities.Payment, refund entities.Refund) error {
	p.events = append(p.events, recordedEvent{eventType: eventType, refundID: refund.ID})
	return nil
}

type sequenceIDs struct{ n int }

func (g *sequenceIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type fixture struct {
	consumer  PaymentEventConsumer
	store     *memory.Store
	gateway   *stubGateway
	publisher *spyPublisher
}

func newFixture() fixture {
	store := memory.NewStore(nil)
	gateway := &stubGateway{}
	publisher := &spyPublisher{}
	refund := commands.RefundPaymentUseCase{
		Payments:  store,
		Gateway:   gateway,
		Publisher: publisher,
		IDs:       &sequenceIDs{},
	}
	return fixture{
		consumer: PaymentEventConsumer{
			Payments:    store,
			Refund:      refund,
			Dedup:       idempotency.NewStore("payments-service", time.Hour, nil),
			ServiceName: "payments-service",
			OrderTopic:  "order-events",
		},
		store:     store,
		gateway:   gateway,
		publisher: publisher,
	}
}

func (f fixture) seedCompletedPayment(t *testing.T, amount float64) {
	t.Helper()
	f.seedPayment(t, entities.Payment{
		ID:         "pay-1",
		OrderID:    1,
		UserID:     "user-1",
		Amount:     amount,
		Currency:   "USD",
		Status:     entities.PaymentStatusCompleted,
		ExternalID: "ch_1",
		CreatedAt:  time.Date(2025, 7, 23, 12, 0, 0, 0, time.UTC),
	})
}

func (f fixture) seedPayment(t *testing.T, payment entities.Payment) {
	t.Helper()
	if _, err := f.store.CreatePayment(context.Background(), payment); err != nil {
		t.Fatalf("seed payment: %v", err)
	}
}

func marshalEnvelope(t *testing.T, envelope events.Envelope) ports.BusMessage {
	t.Helper()
	payload, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return ports.BusMessage{Key: "k", Value: payload}
}

func TestOrderCancelledTriggersAutomaticRefund(t *testing.T) {
	f := newFixture()
	f.seedCompletedPayment(t, 100)

	msg := marshalEnvelope(t, events.Envelope{
		EventType:   events.TypeOrderCancelled,
		OrderID:     1,
		Timestamp:   "2025-07-23T12:00:00.000Z",
		PublishedBy: "orders-service",
	})
	if err := f.consumer.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if f.gateway.refundCalls != 1 {
		t.Fatalf("expected 1 gateway refund, got %d", f.gateway.refundCalls)
	}
	payment, err := f.store.GetPayment(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if payment.Status != entities.PaymentStatusRefunded {
		t.Fatalf("expected REFUNDED payment, got %s", payment.Status)
	}
	if len(payment.Refunds) != 1 {
		t.Fatalf("expected 1 refund, got %d", len(payment.Refunds))
	}
	if got := payment.Refunds[0].Reason; got != "Order cancellation - automatic refund" {
		t.Fatalf("unexpected refund reason %q", got)
	}
}

func TestOrderCancelledRefundsEveryCompletedPayment(t *testing.T) {
	f := newFixture()
	f.seedPayment(t, entities.Payment{
		ID:        "pay-1",
		OrderID:   1,
		UserID:    "user-1",
		Amount:    50,
		Status:    entities.PaymentStatusCompleted,
		CreatedAt: time.Date(2025, 7, 23, 12, 0, 0, 0, time.UTC),
	})
	f.seedPayment(t, entities.Payment{
		ID:        "pay-2",
		OrderID:   1,
		UserID:    "user-1",
		Amount:    50,
		Status:    entities.PaymentStatusCompleted,
		CreatedAt: time.Date(2025, 7, 23, 12, 1, 0, 0, time.UTC),
	})

	msg := marshalEnvelope(t, events.Envelope{
		EventType:   events.TypeOrderCancelled,
		OrderID:     1,
		Timestamp:   "2025-07-23T12:05:00.000Z",
		PublishedBy: "orders-service",
	})
	if err := f.consumer.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if f.gateway.refundCalls != 2 {
		t.Fatalf("expected a refund per completed payment, got %d", f.gateway.refundCalls)
	}
	for _, id := range []string{"pay-1", "pay-2"} {
		payment, err := f.store.GetPayment(context.Background(), id)
		if err != nil {
			t.Fatalf("get payment %s: %v", id, err)
		}
		if payment.Status != entities.PaymentStatusRefunded {
			t.Fatalf("expected %s REFUNDED, got %s", id, payment.Status)
		}
	}
}

func TestFailedRetryDoesNotShadowCompletedPayment(t *testing.T) {
	f := newFixture()
	f.seedPayment(t, entities.Payment{
		ID:        "pay-1",
		OrderID:   1,
		UserID:    "user-1",
		Amount:    100,
		Status:    entities.PaymentStatusCompleted,
		CreatedAt: time.Date(2025, 7, 23, 12, 0, 0, 0, time.UTC),
	})
	// A later failed attempt on the same order must not hide the capture.
	f.seedPayment(t, entities.Payment{
		ID:        "pay-2",
		OrderID:   1,
		UserID:    "user-1",
		Amount:    100,
		Status:    entities.PaymentStatusFailed,
		CreatedAt: time.Date(2025, 7, 23, 12, 2, 0, 0, time.UTC),
	})

	msg := marshalEnvelope(t, events.Envelope{
		EventType:   events.TypeOrderCancelled,
		OrderID:     1,
		Timestamp:   "2025-07-23T12:05:00.000Z",
		PublishedBy: "orders-service",
	})
	if err := f.consumer.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if f.gateway.refundCalls != 1 {
		t.Fatalf("expected the captured payment refunded once, got %d refunds", f.gateway.refundCalls)
	}
	payment, err := f.store.GetPayment(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if payment.Status != entities.PaymentStatusRefunded {
		t.Fatalf("expected REFUNDED capture, got %s", payment.Status)
	}
}

func TestRedeliveredCancellationRefundsAtMostOnce(t *testing.T) {
	f := newFixture()
	f.seedCompletedPayment(t, 100)
	ctx := context.Background()

	// Three deliveries of the same cancellation: one duplicate (same
	// fingerprint) and one resend with a fresh timestamp.
	deliveries := []string{
		"2025-07-23T12:00:00.000Z",
		"2025-07-23T12:00:00.000Z",
		"2025-07-23T12:05:00.000Z",
	}
	for i, timestamp := range deliveries {
		msg := marshalEnvelope(t, events.Envelope{
			EventType:   events.TypeOrderCancelled,
			OrderID:     1,
			Timestamp:   timestamp,
			PublishedBy: "orders-service",
		})
		if err := f.consumer.handleMessage(ctx, msg); err != nil {
			t.Fatalf("delivery %d failed: %v", i, err)
		}
	}

	if f.gateway.refundCalls != 1 {
		t.Fatalf("expected exactly 1 refund across redeliveries, got %d", f.gateway.refundCalls)
	}
}

func TestOrderStatusUpdateIsObservedWithoutSideEffects(t *testing.T) {
	f := newFixture()
	f.seedCompletedPayment(t, 100)

	msg := marshalEnvelope(t, events.Envelope{
		EventType:   events.TypeOrderStatusUpdated,
		OrderID:     1,
		Status:      "CONFIRMED",
		Timestamp:   "2025-07-23T12:00:00.000Z",
		PublishedBy: "orders-service",
	})
	if err := f.consumer.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if f.gateway.refundCalls != 0 {
		t.Fatal("status broadcast must not trigger a refund")
	}
	if len(f.publisher.events) != 0 {
		t.Fatalf("status broadcast must not publish, got %v", f.publisher.events)
	}
}

func TestSelfOriginatedEventsAreSuppressed(t *testing.T) {
	f := newFixture()
	f.seedCompletedPayment(t, 100)

	envelope := events.Envelope{
		EventType:   events.TypeOrderCancelled,
		OrderID:     1,
		Timestamp:   "2025-07-23T12:00:00.000Z",
		PublishedBy: "payments-service",
	}
	if err := f.consumer.handleMessage(context.Background(), marshalEnvelope(t, envelope)); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if f.gateway.refundCalls != 0 {
		t.Fatal("self-originated event must not trigger a refund")
	}
	if !f.consumer.Dedup.IsProcessed(envelope) {
		t.Fatal("suppressed event must still be marked processed")
	}
}

func TestEventsWithoutOriginTagAreProcessed(t *testing.T) {
	f := newFixture()
	f.seedCompletedPayment(t, 100)

	msg := marshalEnvelope(t, events.Envelope{
		EventType: events.TypeOrderCancelled,
		OrderID:   1,
		Timestamp: "2025-07-23T12:00:00.000Z",
	})
	if err := f.consumer.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if f.gateway.refundCalls != 1 {
		t.Fatal("event without publishedBy must be processed as external")
	}
}

func TestCancellationWithoutPaymentIsAcknowledged(t *testing.T) {
	f := newFixture()

	msg := marshalEnvelope(t, events.Envelope{
		EventType:   events.TypeOrderCancelled,
		OrderID:     42,
		Timestamp:   "2025-07-23T12:00:00.000Z",
		PublishedBy: "orders-service",
	})
	if err := f.consumer.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("cancellation without payment must not error: %v", err)
	}
	if f.gateway.refundCalls != 0 {
		t.Fatal("no payment means nothing to refund")
	}
}

func TestCancellationOfFailedPaymentHasNothingToRefund(t *testing.T) {
	f := newFixture()
	if _, err := f.store.CreatePayment(context.Background(), entities.Payment{
		ID:      "pay-9",
		OrderID: 9,
		UserID:  "user-1",
		Amount:  50,
		Status:  entities.PaymentStatusFailed,
	}); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	msg := marshalEnvelope(t, events.Envelope{
		EventType:   events.TypeOrderCancelled,
		OrderID:     9,
		Timestamp:   "2025-07-23T12:00:00.000Z",
		PublishedBy: "orders-service",
	})
	if err := f.consumer.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if f.gateway.refundCalls != 0 {
		t.Fatal("failed payment must not be refunded")
	}
}

func TestOrderCreatedIsAcknowledgedWithoutPayment(t *testing.T) {
	f := newFixture()

	msg := marshalEnvelope(t, events.Envelope{
		EventType:   events.TypeOrderCreated,
		OrderID:     7,
		UserID:      "user-1",
		Timestamp:   "2025-07-23T12:00:00.000Z",
		PublishedBy: "orders-service",
	})
	if err := f.consumer.handleMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if f.gateway.refundCalls != 0 || len(f.publisher.events) != 0 {
		t.Fatal("ORDER_CREATED must be acknowledged without side effects")
	}
}

func TestMalformedPayloadsAreDropped(t *testing.T) {
	f := newFixture()

	if err := f.consumer.handleMessage(context.Background(), ports.BusMessage{Key: "k", Value: []byte("{not json")}); err != nil {
		t.Fatalf("malformed payload must be dropped without error, got %v", err)
	}
	if f.gateway.refundCalls != 0 {
		t.Fatal("malformed payload must have no side effects")
	}
}
