package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"shopstream/contexts/commerce/payments-service/adapters/memory"
	"shopstream/contexts/commerce/payments-service/domain/entities"
	domainerrors "shopstream/contexts/commerce/payments-service/domain/errors"
	"shopstream/contexts/commerce/payments-service/ports"
)

type stubGateway struct {
	chargeResult ports.GatewayCharge
	chargeErr    error
	refundResult ports.GatewayRefund
	refundErr    error
	refundCalls  int
}

func (g *stubGateway) Charge(_ context.Context, _ entities.Payment) (ports.GatewayCharge, error) {
	return g.chargeResult, g.chargeErr
}

func (g *stubGateway) Refund(_ context.Context, _ entities.Payment, _ float64) (ports.GatewayRefund, error) {
	g.refundCalls++
	return g.refundResult, g.refundErr
}

type recordedEvent struct {
	eventType string
	paymentID string
	refundID  string
}

type spyPaymentPublisher struct {
	events []recordedEvent
}

func (p *spyPaymentPublisher) PublishPaymentEvent(_ context.Context, eventType string, payment entities.Payment) error {
	p.events = append(p.events, recordedEvent{eventType: eventType, paymentID: payment.ID})
	return nil
}

func (p *spyPaymentPublisher) PublishRefundEvent(_ context.Context, eventType string, payment entities.Payment, refund entities.Refund) error {
	p.events = append(p.events, recordedEvent{eventType: eventType, paymentID: payment.ID, refundID: refund.ID})
	return nil
}

type sequenceIDs struct{ n int }

func (g *sequenceIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

func TestProcessPaymentCompletes(t *testing.T) {
	store := memory.NewStore(nil)
	publisher := &spyPaymentPublisher{}
	useCase := ProcessPaymentUseCase{
		Payments:  store,
		Gateway:   &stubGateway{chargeResult: ports.GatewayCharge{Success: true, ExternalID: "ch_1"}},
		Publisher: publisher,
		IDs:       &sequenceIDs{},
		Clock:     fixedClock{at: time.Date(2025, 7, 23, 12, 0, 0, 0, time.UTC)},
	}

	payment, err := useCase.Execute(context.Background(), ProcessPaymentCommand{
		OrderID: 1,
		UserID:  "user-1",
		Amount:  100,
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if payment.Status != entities.PaymentStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", payment.Status)
	}
	if payment.ExternalID != "ch_1" {
		t.Fatalf("expected provider charge id, got %q", payment.ExternalID)
	}
	if payment.Currency != "USD" || payment.PaymentMethod != "credit_card" {
		t.Fatalf("expected defaults applied, got %s/%s", payment.Currency, payment.PaymentMethod)
	}
	if payment.ProcessedAt == nil || !payment.ProcessedAt.Equal(time.Date(2025, 7, 23, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected processedAt stamped from clock, got %v", payment.ProcessedAt)
	}
	if len(publisher.events) != 1 || publisher.events[0].eventType != "PAYMENT_COMPLETED" {
		t.Fatalf("expected PAYMENT_COMPLETED publication, got %v", publisher.events)
	}
}

func TestProcessPaymentDeclinedFails(t *testing.T) {
	store := memory.NewStore(nil)
	publisher := &spyPaymentPublisher{}
	useCase := ProcessPaymentUseCase{
		Payments:  store,
		Gateway:   &stubGateway{chargeResult: ports.GatewayCharge{Success: false, FailureReason: "card declined"}},
		Publisher: publisher,
		IDs:       &sequenceIDs{},
	}

	payment, err := useCase.Execute(context.Background(), ProcessPaymentCommand{
		OrderID: 1,
		UserID:  "user-1",
		Amount:  100,
	})
	if err != nil {
		t.Fatalf("declined charge is an outcome, not an error: %v", err)
	}
	if payment.Status != entities.PaymentStatusFailed {
		t.Fatalf("expected FAILED, got %s", payment.Status)
	}
	if payment.FailureReason != "card declined" {
		t.Fatalf("expected failure reason recorded, got %q", payment.FailureReason)
	}
	if len(publisher.events) != 1 || publisher.events[0].eventType != "PAYMENT_FAILED" {
		t.Fatalf("expected PAYMENT_FAILED publication, got %v", publisher.events)
	}
}

func TestProcessPaymentGatewayErrorResolvesToFailed(t *testing.T) {
	store := memory.NewStore(nil)
	publisher := &spyPaymentPublisher{}
	useCase := ProcessPaymentUseCase{
		Payments:  store,
		Gateway:   &stubGateway{chargeErr: errors.New("connection refused")},
		Publisher: publisher,
		IDs:       &sequenceIDs{},
	}

	payment, err := useCase.Execute(context.Background(), ProcessPaymentCommand{
		OrderID: 1,
		UserID:  "user-1",
		Amount:  100,
	})
	if err != nil {
		t.Fatalf("gateway outage must resolve the attempt, not error: %v", err)
	}
	if payment.Status != entities.PaymentStatusFailed {
		t.Fatalf("expected FAILED, got %s", payment.Status)
	}
	if len(publisher.events) != 1 || publisher.events[0].eventType != "PAYMENT_FAILED" {
		t.Fatalf("expected PAYMENT_FAILED publication, got %v", publisher.events)
	}
}

func TestProcessPaymentValidation(t *testing.T) {
	useCase := ProcessPaymentUseCase{
		Payments:  memory.NewStore(nil),
		Gateway:   &stubGateway{},
		Publisher: &spyPaymentPublisher{},
		IDs:       &sequenceIDs{},
	}

	_, err := useCase.Execute(context.Background(), ProcessPaymentCommand{UserID: "user-1", Amount: 100})
	if !errors.Is(err, domainerrors.ErrInvalidPaymentRequest) {
		t.Fatalf("missing order: expected ErrInvalidPaymentRequest, got %v", err)
	}

	_, err = useCase.Execute(context.Background(), ProcessPaymentCommand{OrderID: 1, UserID: "user-1", Amount: 0})
	if !errors.Is(err, domainerrors.ErrInvalidPaymentRequest) {
		t.Fatalf("zero amount: expected ErrInvalidPaymentRequest, got %v", err)
	}
}
