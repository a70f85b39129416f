package queries

import (
	"context"
	"log/slog"

	"shopstream/contexts/commerce/payments-service/domain/entities"
	"shopstream/contexts/commerce/payments-service/ports"
)

type ListPaymentsQuery struct {
	// UserID limits results to one user's payments; empty lists all (admin
	// view).
	UserID  string
	OrderID int64
	Status  entities.PaymentStatus
	Page    int
	Limit   int
}

type ListPaymentsResult struct {
	Payments   []entities.Payment
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

type ListPaymentsUseCase struct {
	Payments ports.PaymentRepository
	Logger   *slog.Logger
}

func (u ListPaymentsUseCase) Execute(ctx context.Context, query ListPaymentsQuery) (ListPaymentsResult, error) {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	payments, total, err := u.Payments.ListPayments(ctx, ports.PaymentListFilter{
		UserID:  query.UserID,
		OrderID: query.OrderID,
		Status:  query.Status,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return ListPaymentsResult{}, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return ListPaymentsResult{
		Payments:   payments,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
