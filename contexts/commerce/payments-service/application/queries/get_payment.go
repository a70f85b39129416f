package queries

import (
	"context"
	"log/slog"

	"shopstream/contexts/commerce/payments-service/domain/entities"
	"shopstream/contexts/commerce/payments-service/ports"
)

type GetPaymentQuery struct {
	PaymentID string
}

type GetPaymentUseCase struct {
	Payments ports.PaymentRepository
	Logger   *slog.Logger
}

func (u GetPaymentUseCase) Execute(ctx context.Context, query GetPaymentQuery) (entities.Payment, error) {
	return u.Payments.GetPayment(ctx, query.PaymentID)
}
