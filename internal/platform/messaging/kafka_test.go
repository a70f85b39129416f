package messaging

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Message, 1)
	if err := bus.Subscribe(ctx, "order-events", "payments-events", func(_ context.Context, msg Message) error {
		received <- msg
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := bus.Publish(ctx, "order-events", Message{Key: "1", Value: []byte(`{"eventType":"ORDER_CREATED"}`)}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-received:
		if msg.Key != "1" {
			t.Fatalf("unexpected key %q", msg.Key)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		once := sync.Once{}
		if err := bus.Subscribe(ctx, "payment-events", "group", func(_ context.Context, _ Message) error {
			once.Do(wg.Done)
			return nil
		}); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}

	if err := bus.Publish(ctx, "payment-events", Message{Key: "k", Value: []byte(`{}`)}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("not every subscriber received the message")
	}
}

func TestPublishIgnoresOtherTopics(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Message, 1)
	if err := bus.Subscribe(ctx, "refund-events", "group", func(_ context.Context, msg Message) error {
		received <- msg
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := bus.Publish(ctx, "order-events", Message{Key: "k", Value: []byte(`{}`)}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case <-received:
		t.Fatal("subscriber must not receive messages from other topics")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDrainWaitsForSubscriptionLoops(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())

	if err := bus.Subscribe(ctx, "order-events", "group", func(_ context.Context, _ Message) error {
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	cancel()
	done := make(chan struct{})
	go func() {
		bus.Drain()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drain did not return after context cancellation")
	}
}
