package commands

import (
	"context"
	"errors"
	"testing"

	"shopstream/contexts/commerce/orders-service/domain/entities"
	domainerrors "shopstream/contexts/commerce/orders-service/domain/errors"
)

func TestCreateOrderPublishesChoreographyEvents(t *testing.T) {
	repo := newStubOrderRepo()
	publisher := &spyPublisher{}
	useCase := CreateOrderUseCase{Orders: repo, Publisher: publisher}

	order, err := useCase.Execute(context.Background(), CreateOrderCommand{
		UserID:          "user-1",
		ShippingAddress: "1 Main St",
		Items: []CreateOrderItem{
			{ProductID: 10, Quantity: 2, Price: 25},
			{ProductID: 11, Quantity: 1, Price: 50},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if order.Status != entities.OrderStatusPending {
		t.Fatalf("new orders start PENDING, got %s", order.Status)
	}
	if order.TotalAmount != 100 {
		t.Fatalf("expected total 100, got %v", order.TotalAmount)
	}

	if len(publisher.events) != 3 {
		t.Fatalf("expected 3 publications, got %v", publisher.events)
	}
	want := []string{"ORDER_CREATED", "INVENTORY_RESERVE_REQUESTED", "PAYMENT_REQUESTED"}
	for i, eventType := range want {
		if publisher.events[i].eventType != eventType {
			t.Fatalf("publication %d: expected %s, got %s", i, eventType, publisher.events[i].eventType)
		}
	}
}

func TestCreateOrderValidation(t *testing.T) {
	useCase := CreateOrderUseCase{Orders: newStubOrderRepo(), Publisher: &spyPublisher{}}
	ctx := context.Background()

	_, err := useCase.Execute(ctx, CreateOrderCommand{
		ShippingAddress: "1 Main St",
		Items:           []CreateOrderItem{{ProductID: 1, Quantity: 1, Price: 10}},
	})
	if !errors.Is(err, domainerrors.ErrInvalidOrderRequest) {
		t.Fatalf("missing user: expected ErrInvalidOrderRequest, got %v", err)
	}

	_, err = useCase.Execute(ctx, CreateOrderCommand{UserID: "user-1", ShippingAddress: "1 Main St"})
	if !errors.Is(err, domainerrors.ErrEmptyOrder) {
		t.Fatalf("no items: expected ErrEmptyOrder, got %v", err)
	}

	_, err = useCase.Execute(ctx, CreateOrderCommand{
		UserID:          "user-1",
		ShippingAddress: "1 Main St",
		Items:           []CreateOrderItem{{ProductID: 1, Quantity: 0, Price: 10}},
	})
	if !errors.Is(err, domainerrors.ErrInvalidOrderRequest) {
		t.Fatalf("zero quantity: expected ErrInvalidOrderRequest, got %v", err)
	}
}

func TestCreateOrderSurvivesPublishFailure(t *testing.T) {
	repo := newStubOrderRepo()
	useCase := CreateOrderUseCase{Orders: repo, Publisher: &spyPublisher{err: errors.New("broker unavailable")}}

	order, err := useCase.Execute(context.Background(), CreateOrderCommand{
		UserID:          "user-1",
		ShippingAddress: "1 Main St",
		Items:           []CreateOrderItem{{ProductID: 1, Quantity: 1, Price: 10}},
	})
	if err != nil {
		t.Fatalf("publish failure must not fail creation: %v", err)
	}
	if _, ok := repo.orders[order.ID]; !ok {
		t.Fatal("order must be persisted despite publish failure")
	}
}
