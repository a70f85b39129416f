package httptransport

import "time"

type CreateOrderRequest struct {
	UserID          string                   `json:"userId"`
	ShippingAddress string                   `json:"shippingAddress"`
	PaymentMethod   string                   `json:"paymentMethod,omitempty"`
	Items           []CreateOrderItemRequest `json:"items"`
}

type CreateOrderItemRequest struct {
	ProductID   int64   `json:"productId"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	ProductName string  `json:"productName,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type OrderResponse struct {
	Order OrderDTO `json:"order"`
}

type ListOrdersResponse struct {
	Orders     []OrderDTO    `json:"orders"`
	Pagination PaginationDTO `json:"pagination"`
}

type OrderDTO struct {
	ID              int64          `json:"id"`
	UserID          string         `json:"userId"`
	Status          string         `json:"status"`
	TotalAmount     float64        `json:"totalAmount"`
	ShippingAddress string         `json:"shippingAddress,omitempty"`
	Items           []OrderItemDTO `json:"orderItems"`
	OrderedAt       time.Time      `json:"orderedAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type OrderItemDTO struct {
	ProductID   int64   `json:"productId"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	ProductName string  `json:"productName,omitempty"`
}

type PaginationDTO struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
