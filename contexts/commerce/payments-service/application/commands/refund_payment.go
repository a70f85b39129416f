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

type RefundPaymentCommand struct {
	PaymentID string
	// Amount of zero means refund the full remaining balance.
	Amount float64
	Reason string
}

// RefundPaymentUseCase issues a refund against a completed payment. The
// refundable balance is the captured amount minus all COMPLETED refunds, so
// repeated requests for the same payment cannot over-refund.
type RefundPaymentUseCase struct {
	Payments  ports.PaymentRepository
	Gateway   ports.GatewayClient
	Publisher ports.PaymentEventPublisher
	IDs       ports.IDGenerator
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (u RefundPaymentUseCase) Execute(ctx context.Context, cmd RefundPaymentCommand) (entities.Refund, error) {
	logger := application.ResolveLogger(u.Logger)

	if cmd.PaymentID == "" || cmd.Amount < 0 {
		return entities.Refund{}, domainerrors.ErrInvalidRefundRequest
	}

	payment, err := u.Payments.GetPayment(ctx, cmd.PaymentID)
	if err != nil {
		return entities.Refund{}, err
	}
	if !payment.Refundable() {
		return entities.Refund{}, domainerrors.ErrPaymentNotRefundable
	}

	remaining := payment.RefundableAmount()
	amount := cmd.Amount
	if amount == 0 {
		amount = remaining
	}
	if amount > remaining || remaining <= 0 {
		return entities.Refund{}, domainerrors.ErrRefundExceedsRemaining
	}

	now := u.now()
	refund := entities.Refund{
		ID:        u.IDs.NewID(),
		PaymentID: payment.ID,
		Amount:    amount,
		Reason:    cmd.Reason,
		Status:    entities.RefundStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	refund, err = u.Payments.CreateRefund(ctx, refund)
	if err != nil {
		return entities.Refund{}, err
	}

	result, err := u.Gateway.Refund(ctx, payment, amount)
	if err != nil {
		result = ports.GatewayRefund{Success: false, FailureReason: "payment provider unavailable: " + err.Error()}
		logger.Error("refund gateway call failed",
			"event", "refund_gateway_error",
			"module", "commerce/payments-service",
			"layer", "application",
			"refund_id", refund.ID,
			"payment_id", payment.ID,
			"error", err.Error(),
		)
	}

	eventType := events.TypeRefundCompleted
	if result.Success {
		refund.Status = entities.RefundStatusCompleted
		refund.ExternalID = result.ExternalID
	} else {
		refund.Status = entities.RefundStatusFailed
		eventType = events.TypeRefundFailed
	}
	refund.UpdatedAt = u.now()

	refund, err = u.Payments.UpdateRefund(ctx, refund)
	if err != nil {
		return entities.Refund{}, err
	}
	payment.Refunds = append(payment.Refunds, refund)

	// A payment with no balance left flips to REFUNDED so further refund
	// requests fail the Refundable check instead of the balance check.
	if result.Success && payment.RefundableAmount() <= 0 {
		payment.Status = entities.PaymentStatusRefunded
		payment.UpdatedAt = u.now()
		if payment, err = u.Payments.UpdatePayment(ctx, payment); err != nil {
			return entities.Refund{}, err
		}
	}

	if err := u.Publisher.PublishRefundEvent(ctx, eventType, payment, refund); err != nil {
		logger.Error("refund event publish failed",
			"event", "refund_publish_failed",
			"module", "commerce/payments-service",
			"layer", "application",
			"refund_id", refund.ID,
			"payment_id", payment.ID,
			"event_type", eventType,
			"error", err.Error(),
		)
	}

	logger.Info("refund processed",
		"event", "refund_processed",
		"module", "commerce/payments-service",
		"layer", "application",
		"refund_id", refund.ID,
		"payment_id", payment.ID,
		"status", string(refund.Status),
		"amount", refund.Amount,
	)
	return refund, nil
}

func (u RefundPaymentUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
