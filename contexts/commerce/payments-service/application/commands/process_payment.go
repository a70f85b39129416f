package commands

import (
	"context"
	"log/slog"
	"time"

	application "shopstream/contexts/commerce/payments-service/application"
	"shopstream/contexts/commerce/payments-service/domain/entities"
	domainerrors "shopstream/contexts/commerce/payments-service/domain/errors"
	"shopstream/contexts/commerce/payments-service/ports"
	"shopstream/internal/shared/events"
)

type ProcessPaymentCommand struct {
	OrderID       int64
	UserID        string
	Amount        float64
	Currency      string
	PaymentMethod string
}

// ProcessPaymentUseCase records a payment attempt and charges the provider.
// The payment row exists in PENDING before the gateway is called, so a crash
// mid-charge leaves an auditable record instead of silence.
type ProcessPaymentUseCase struct {
	Payments  ports.PaymentRepository
	Gateway   ports.GatewayClient
	Publisher ports.PaymentEventPublisher
	IDs       ports.IDGenerator
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (u ProcessPaymentUseCase) Execute(ctx context.Context, cmd ProcessPaymentCommand) (entities.Payment, error) {
	logger := application.ResolveLogger(u.Logger)

	if cmd.OrderID == 0 || cmd.UserID == "" || cmd.Amount <= 0 {
		return entities.Payment{}, domainerrors.ErrInvalidPaymentRequest
	}

	currency := cmd.Currency
	if currency == "" {
		currency = "USD"
	}
	method := cmd.PaymentMethod
	if method == "" {
		method = "credit_card"
	}

	now := u.now()
	payment := entities.Payment{
		ID:            u.IDs.NewID(),
		OrderID:       cmd.OrderID,
		UserID:        cmd.UserID,
		Amount:        cmd.Amount,
		Currency:      currency,
		PaymentMethod: method,
		Status:        entities.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	payment, err := u.Payments.CreatePayment(ctx, payment)
	if err != nil {
		return entities.Payment{}, err
	}

	charge, err := u.Gateway.Charge(ctx, payment)
	if err != nil {
		// Provider unreachable. The attempt still resolves to FAILED so the
		// order side learns the outcome instead of waiting forever.
		charge = ports.GatewayCharge{Success: false, FailureReason: "payment provider unavailable: " + err.Error()}
		logger.Error("payment gateway call failed",
			"event", "payment_gateway_error",
			"module", "commerce/payments-service",
			"layer", "application",
			"payment_id", payment.ID,
			"order_id", payment.OrderID,
			"error", err.Error(),
		)
	}

	eventType := events.TypePaymentCompleted
	if charge.Success {
		payment.Status = entities.PaymentStatusCompleted
		payment.ExternalID = charge.ExternalID
	} else {
		payment.Status = entities.PaymentStatusFailed
		payment.FailureReason = charge.FailureReason
		eventType = events.TypePaymentFailed
	}
	resolvedAt := u.now()
	payment.ProcessedAt = &resolvedAt
	payment.UpdatedAt = resolvedAt

	payment, err = u.Payments.UpdatePayment(ctx, payment)
	if err != nil {
		return entities.Payment{}, err
	}

	// State is already committed; a publish failure is logged and the event
	// is lost rather than the mutation reverted.
	if err := u.Publisher.PublishPaymentEvent(ctx, eventType, payment); err != nil {
		logger.Error("payment event publish failed",
			"event", "payment_publish_failed",
			"module", "commerce/payments-service",
			"layer", "application",
			"payment_id", payment.ID,
			"order_id", payment.OrderID,
			"event_type", eventType,
			"error", err.Error(),
		)
	}

	logger.Info("payment processed",
		"event", "payment_processed",
		"module", "commerce/payments-service",
		"layer", "application",
		"payment_id", payment.ID,
		"order_id", payment.OrderID,
		"status", string(payment.Status),
		"amount", payment.Amount,
	)
	return payment, nil
}

func (u ProcessPaymentUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
