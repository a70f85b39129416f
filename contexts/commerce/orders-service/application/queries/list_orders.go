package queries

import (
	"context"
	"log/slog"

	"shopstream/contexts/commerce/orders-service/domain/entities"
	"shopstream/contexts/commerce/orders-service/ports"
)

type ListOrdersQuery struct {
	// UserID limits results to one user's history; empty lists all orders
	// (admin view).
	UserID string
	Status entities.OrderStatus
	Page   int
	Limit  int
}

type ListOrdersResult struct {
	Orders     []entities.Order
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

type ListOrdersUseCase struct {
	Orders ports.OrderRepository
	Logger *slog.Logger
}

func (u ListOrdersUseCase) Execute(ctx context.Context, query ListOrdersQuery) (ListOrdersResult, error) {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	orders, total, err := u.Orders.ListOrders(ctx, ports.OrderListFilter{
		UserID: query.UserID,
		Status: query.Status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return ListOrdersResult{}, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return ListOrdersResult{
		Orders:     orders,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
