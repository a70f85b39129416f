package entities

import (
	"time"

	"shopstream/internal/shared/events"
)

// OrderStatus is the closed set of order lifecycle states.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusReturned   OrderStatus = "RETURNED"
)

// Valid reports membership in the fixed status set. Transition requests to a
// value outside the set fail before any mutation.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
		OrderStatusReturned:
		return true
	}
	return false
}

// Cancellable reports whether an order in this status may still be cancelled.
// DELIVERED and CANCELLED are final for the cancellation path.
func (s OrderStatus) Cancellable() bool {
	return s != OrderStatusDelivered && s != OrderStatusCancelled
}

type Order struct {
	ID              int64
	UserID          string
	Status          OrderStatus
	TotalAmount     float64
	ShippingAddress string
	Items           []OrderItem
	OrderedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID           int64
	OrderID      int64
	ProductID    int64
	Quantity     int
	Price        float64
	ProductName  string
	ProductImage string
}

// Snapshot renders the order as the wire payload carried on order events.
func (o Order) Snapshot() events.OrderSnapshot {
	items := make([]events.OrderItemSnapshot, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, events.OrderItemSnapshot{
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			Price:       item.Price,
			ProductName: item.ProductName,
		})
	}
	return events.OrderSnapshot{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		Items:           items,
		OrderedAt:       o.OrderedAt.UTC(),
	}
}
