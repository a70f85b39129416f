package queries

import (
	"context"
	"log/slog"

	"shopstream/contexts/commerce/orders-service/domain/entities"
	"shopstream/contexts/commerce/orders-service/ports"
)

type GetOrderQuery struct {
	OrderID int64
	UserID  string
}

type GetOrderUseCase struct {
	Orders ports.OrderRepository
	Logger *slog.Logger
}

func (u GetOrderUseCase) Execute(ctx context.Context, query GetOrderQuery) (entities.Order, error) {
	return u.Orders.GetOrder(ctx, query.OrderID, query.UserID)
}
