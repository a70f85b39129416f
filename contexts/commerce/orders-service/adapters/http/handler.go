package httpadapter

import (
	"context"
	"log/slog"

	application "shopstream/contexts/commerce/orders-service/application"
	"shopstream/contexts/commerce/orders-service/application/commands"
	"shopstream/contexts/commerce/orders-service/application/queries"
	"shopstream/contexts/commerce/orders-service/domain/entities"
	httptransport "shopstream/contexts/commerce/orders-service/transport/http"
)

type Handler struct {
	CreateOrder  commands.CreateOrderUseCase
	UpdateStatus commands.UpdateOrderStatusUseCase
	CancelOrder  commands.CancelOrderUseCase
	GetOrder     queries.GetOrderUseCase
	ListOrders   queries.ListOrdersUseCase
	Logger       *slog.Logger
}

// CreateOrderHandler godoc
// @Summary Create an order
// @Description Creates a PENDING order and publishes the creation events.
// @Tags orders
// @Accept json
// @Produce json
// @Param request body httptransport.CreateOrderRequest true "Order payload"
// @Success 201 {object} httptransport.OrderResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /orders [post]
func (h Handler) CreateOrderHandler(ctx context.Context, req httptransport.CreateOrderRequest) (httptransport.OrderResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("create order request received",
		"event", "http_create_order_received",
		"module", "commerce/orders-service",
		"layer", "transport",
		"user_id", req.UserID,
	)

	items := make([]commands.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, commands.CreateOrderItem{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Price:       item.Price,
			ProductName: item.ProductName,
		})
	}

	order, err := h.CreateOrder.Execute(ctx, commands.CreateOrderCommand{
		UserID:          req.UserID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Items:           items,
	})
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return httptransport.OrderResponse{Order: mapOrder(order)}, nil
}

// UpdateOrderStatusHandler godoc
// @Summary Update order status
// @Description Applies a status transition; same-status requests are no-ops.
// @Tags orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order id"
// @Param request body httptransport.UpdateOrderStatusRequest true "Target status"
// @Success 200 {object} httptransport.OrderResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /orders/{order_id}/status [put]
func (h Handler) UpdateOrderStatusHandler(ctx context.Context, orderID int64, userID string, req httptransport.UpdateOrderStatusRequest) (httptransport.OrderResponse, error) {
	order, err := h.UpdateStatus.Execute(ctx, commands.UpdateOrderStatusCommand{
		OrderID: orderID,
		Status:  entities.OrderStatus(req.Status),
		UserID:  userID,
	})
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return httptransport.OrderResponse{Order: mapOrder(order)}, nil
}

// CancelOrderHandler godoc
// @Summary Cancel an order
// @Description Cancels an order unless it is already DELIVERED or CANCELLED.
// @Tags orders
// @Produce json
// @Param order_id path int true "Order id"
// @Success 200 {object} httptransport.OrderResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /orders/{order_id}/cancel [post]
func (h Handler) CancelOrderHandler(ctx context.Context, orderID int64, userID string) (httptransport.OrderResponse, error) {
	order, err := h.CancelOrder.Execute(ctx, commands.CancelOrderCommand{
		OrderID: orderID,
		UserID:  userID,
	})
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return httptransport.OrderResponse{Order: mapOrder(order)}, nil
}

// GetOrderHandler godoc
// @Summary Get one order
// @Tags orders
// @Produce json
// @Param order_id path int true "Order id"
// @Success 200 {object} httptransport.OrderResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /orders/{order_id} [get]
func (h Handler) GetOrderHandler(ctx context.Context, orderID int64, userID string) (httptransport.OrderResponse, error) {
	order, err := h.GetOrder.Execute(ctx, queries.GetOrderQuery{OrderID: orderID, UserID: userID})
	if err != nil {
		return httptransport.OrderResponse{}, err
	}
	return httptransport.OrderResponse{Order: mapOrder(order)}, nil
}

// ListOrdersHandler godoc
// @Summary List orders
// @Description Paginated order history; userID scopes to one user.
// @Tags orders
// @Produce json
// @Param user_id query string false "User id"
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} httptransport.ListOrdersResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /orders [get]
func (h Handler) ListOrdersHandler(ctx context.Context, userID string, status string, page, limit int) (httptransport.ListOrdersResponse, error) {
	result, err := h.ListOrders.Execute(ctx, queries.ListOrdersQuery{
		UserID: userID,
		Status: entities.OrderStatus(status),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return httptransport.ListOrdersResponse{}, err
	}

	orders := make([]httptransport.OrderDTO, 0, len(result.Orders))
	for _, order := range result.Orders {
		orders = append(orders, mapOrder(order))
	}
	return httptransport.ListOrdersResponse{
		Orders: orders,
		Pagination: httptransport.PaginationDTO{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
		},
	}, nil
}

func mapOrder(order entities.Order) httptransport.OrderDTO {
	items := make([]httptransport.OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, httptransport.OrderItemDTO{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Price:       item.Price,
			ProductName: item.ProductName,
		})
	}
	return httptransport.OrderDTO{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          string(order.Status),
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		Items:           items,
		OrderedAt:       order.OrderedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}
