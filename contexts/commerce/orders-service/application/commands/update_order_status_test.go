package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopstream/contexts/commerce/orders-service/domain/entities"
	domainerrors "shopstream/contexts/commerce/orders-service/domain/errors"
	"shopstream/contexts/commerce/orders-service/ports"
)

type stubOrderRepo struct {
	orders      map[int64]entities.Order
	updateCalls int
}

func newStubOrderRepo(orders ...entities.Order) *stubOrderRepo {
	repo := &stubOrderRepo{orders: make(map[int64]entities.Order)}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (r *stubOrderRepo) CreateOrder(_ context.Context, order entities.Order) (entities.Order, error) {
	if order.ID == 0 {
		order.ID = int64(len(r.orders) + 1)
	}
	r.orders[order.ID] = order
	return order, nil
}

func (r *stubOrderRepo) GetOrder(_ context.Context, orderID int64, userID string) (entities.Order, error) {
	order, ok := r.orders[orderID]
	if !ok || (userID != "" && order.UserID != userID) {
		return entities.Order{}, domainerrors.ErrOrderNotFound
	}
	return order, nil
}

func (r *stubOrderRepo) UpdateOrderStatus(_ context.Context, orderID int64, userID string, status entities.OrderStatus, updatedAt time.Time) (entities.Order, error) {
	order, ok := r.orders[orderID]
	if !ok || (userID != "" && order.UserID != userID) {
		return entities.Order{}, domainerrors.ErrOrderNotFound
	}
	r.updateCalls++
	order.Status = status
	order.UpdatedAt = updatedAt
	r.orders[orderID] = order
	return order, nil
}

func (r *stubOrderRepo) ListOrders(_ context.Context, _ ports.OrderListFilter) ([]entities.Order, int64, error) {
	var out []entities.Order
	for _, order := range r.orders {
		out = append(out, order)
	}
	return out, int64(len(out)), nil
}

type publishedEvent struct {
	eventType string
	orderID   int64
}

type spyPublisher struct {
	events []publishedEvent
	err    error
}

func (p *spyPublisher) PublishOrderEvent(_ context.Context, eventType string, order entities.Order) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{eventType: eventType, orderID: order.ID})
	return nil
}

func (p *spyPublisher) PublishInventoryReservation(_ context.Context, order entities.Order) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{eventType: "INVENTORY_RESERVE_REQUESTED", orderID: order.ID})
	return nil
}

func (p *spyPublisher) PublishPaymentRequest(_ context.Context, order entities.Order, _ string) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{eventType: "PAYMENT_REQUESTED", orderID: order.ID})
	return nil
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

func TestUpdateOrderStatusTransitionPublishes(t *testing.T) {
	repo := newStubOrderRepo(entities.Order{ID: 1, UserID: "user-1", Status: entities.OrderStatusPending})
	publisher := &spyPublisher{}
	useCase := UpdateOrderStatusUseCase{
		Orders:    repo,
		Publisher: publisher,
		Clock:     fixedClock{at: time.Date(2025, 7, 23, 12, 0, 0, 0, time.UTC)},
	}

	order, err := useCase.Execute(context.Background(), UpdateOrderStatusCommand{
		OrderID: 1,
		Status:  entities.OrderStatusConfirmed,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if order.Status != entities.OrderStatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", order.Status)
	}
	if repo.updateCalls != 1 {
		t.Fatalf("expected 1 repository write, got %d", repo.updateCalls)
	}
	if len(publisher.events) != 1 || publisher.events[0].eventType != "ORDER_STATUS_UPDATED" {
		t.Fatalf("expected one ORDER_STATUS_UPDATED publication, got %v", publisher.events)
	}
}

func TestUpdateOrderStatusSameStatusIsNoOp(t *testing.T) {
	repo := newStubOrderRepo(entities.Order{ID: 1, UserID: "user-1", Status: entities.OrderStatusConfirmed})
	publisher := &spyPublisher{}
	useCase := UpdateOrderStatusUseCase{Orders: repo, Publisher: publisher}

	order, err := useCase.Execute(context.Background(), UpdateOrderStatusCommand{
		OrderID: 1,
		Status:  entities.OrderStatusConfirmed,
	})
	if err != nil {
		t.Fatalf("no-op update failed: %v", err)
	}
	if order.Status != entities.OrderStatusConfirmed {
		t.Fatalf("expected current order back, got status %s", order.Status)
	}
	if repo.updateCalls != 0 {
		t.Fatalf("same-status request must not write, got %d writes", repo.updateCalls)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("same-status request must not publish, got %v", publisher.events)
	}
}

func TestUpdateOrderStatusFromEventDoesNotPublish(t *testing.T) {
	repo := newStubOrderRepo(entities.Order{ID: 1, UserID: "user-1", Status: entities.OrderStatusPending})
	publisher := &spyPublisher{}
	useCase := UpdateOrderStatusUseCase{Orders: repo, Publisher: publisher}

	_, err := useCase.Execute(context.Background(), UpdateOrderStatusCommand{
		OrderID:   1,
		Status:    entities.OrderStatusConfirmed,
		FromEvent: true,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if repo.updateCalls != 1 {
		t.Fatalf("expected 1 repository write, got %d", repo.updateCalls)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("event-driven transition must not re-publish, got %v", publisher.events)
	}
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	repo := newStubOrderRepo(entities.Order{ID: 1, Status: entities.OrderStatusPending})
	useCase := UpdateOrderStatusUseCase{Orders: repo, Publisher: &spyPublisher{}}

	_, err := useCase.Execute(context.Background(), UpdateOrderStatusCommand{
		OrderID: 1,
		Status:  entities.OrderStatus("DISPATCHED"),
	})
	if !errors.Is(err, domainerrors.ErrInvalidOrderStatus) {
		t.Fatalf("expected ErrInvalidOrderStatus, got %v", err)
	}
	if repo.updateCalls != 0 {
		t.Fatal("invalid status must not reach the repository")
	}
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	useCase := UpdateOrderStatusUseCase{Orders: newStubOrderRepo(), Publisher: &spyPublisher{}}

	_, err := useCase.Execute(context.Background(), UpdateOrderStatusCommand{
		OrderID: 404,
		Status:  entities.OrderStatusConfirmed,
	})
	if !errors.Is(err, domainerrors.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestUpdateOrderStatusPublishFailureDoesNotFailUpdate(t *testing.T) {
	repo := newStubOrderRepo(entities.Order{ID: 1, Status: entities.OrderStatusPending})
	publisher := &spyPublisher{err: errors.New("broker unavailable")}
	useCase := UpdateOrderStatusUseCase{Orders: repo, Publisher: publisher}

	order, err := useCase.Execute(context.Background(), UpdateOrderStatusCommand{
		OrderID: 1,
		Status:  entities.OrderStatusConfirmed,
	})
	if err != nil {
		t.Fatalf("publish failure must not fail the update: %v", err)
	}
	if order.Status != entities.OrderStatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", order.Status)
	}
}
