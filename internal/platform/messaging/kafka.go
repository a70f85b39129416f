package messaging

import (
	"context"
	"log/slog"
	"sync"
)

// Message is one record on a topic: a partition key plus the JSON envelope
// bytes. Consumers own deserialization so a malformed payload can be dropped
// at the consumer boundary instead of poisoning the bus loop.
type Message struct {
	Key   string
	Value []byte
}

// Handler processes one message. A non-nil error leaves the message eligible
// for transport-level redelivery; the bus itself does not retry.
type Handler func(ctx context.Context, msg Message) error

// Kafka is the event bus used by producers and consumers. The current
// implementation is in-process publish/subscribe while runtime wiring is
// finalized for external brokers; the Publish/Subscribe surface matches what
// a broker-backed adapter would expose.
type Kafka struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Message
	wg          sync.WaitGroup
	logger      *slog.Logger
}

func NewKafka(_ []string, logger *slog.Logger) (*Kafka, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{
		subscribers: make(map[string][]chan Message),
		logger:      logger,
	}, nil
}

// Publish fans the message out to every subscriber of the topic. A slow
// subscriber whose buffer is full is skipped with a warning rather than
// blocking the caller.
func (k *Kafka) Publish(ctx context.Context, topic string, msg Message) error {
	k.mu.RLock()
	subs := append([]chan Message(nil), k.subscribers[topic]...)
	k.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- msg:
		default:
			k.logger.Warn("dropping message for slow subscriber",
				"event", "kafka_publish_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"key", msg.Key,
			)
		}
	}

	k.logger.Info("message published",
		"event", "kafka_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"key", msg.Key,
	)
	return nil
}

// Subscribe registers handler for a topic and starts its delivery loop.
// Messages are delivered one at a time per subscription; the loop exits when
// ctx is cancelled, after the in-flight handler call returns.
func (k *Kafka) Subscribe(ctx context.Context, topic string, consumerGroup string, handler Handler) error {
	ch := make(chan Message, 128)

	k.mu.Lock()
	k.subscribers[topic] = append(k.subscribers[topic], ch)
	k.mu.Unlock()

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		for {
			select {
			case <-ctx.Done():
				k.removeSubscriber(topic, ch)
				return
			case msg := <-ch:
				if err := handler(ctx, msg); err != nil {
					k.logger.Error("consumer handler failed",
						"event", "kafka_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"key", msg.Key,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

// Drain blocks until every subscription loop has exited. Callers cancel the
// subscribe contexts first; in-flight handlers run to completion before their
// loops return.
func (k *Kafka) Drain() {
	k.wg.Wait()
}

func (k *Kafka) removeSubscriber(topic string, target chan Message) {
	k.mu.Lock()
	defer k.mu.Unlock()

	items := k.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan Message, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	k.subscribers[topic] = filtered
}
