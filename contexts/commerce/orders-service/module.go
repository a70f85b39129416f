package ordersservice

import (
	"log/slog"

	httpadapter "shopstream/contexts/commerce/orders-service/adapters/http"
	kafkaadapter "shopstream/contexts/commerce/orders-service/adapters/kafka"
	"shopstream/contexts/commerce/orders-service/adapters/memory"
	"shopstream/contexts/commerce/orders-service/application/commands"
	"shopstream/contexts/commerce/orders-service/application/queries"
	"shopstream/contexts/commerce/orders-service/application/workers"
	"shopstream/contexts/commerce/orders-service/ports"
	"shopstream/internal/platform/config"
	"shopstream/internal/shared/idempotency"
)

// Module is the composition surface for the orders service. Runtime wiring
// consumes Handler and Consumer; UpdateStatus is exposed because the consumer
// and the HTTP surface share the same transition guard.
type Module struct {
	Handler      httpadapter.Handler
	Consumer     workers.OrderEventConsumer
	UpdateStatus commands.UpdateOrderStatusUseCase
}

type Dependencies struct {
	Orders     ports.OrderRepository
	Publisher  ports.OrderEventPublisher
	Subscriber ports.EventSubscriber
	Dedup      ports.EventDedupStore
	Clock      ports.Clock

	ConsumerGroup  string
	PaymentTopic   string
	InventoryTopic string
	ShippingTopic  string

	Logger *slog.Logger
}

// NewModule wires the orders use-cases against explicit ports.
func NewModule(deps Dependencies) Module {
	updateStatus := commands.UpdateOrderStatusUseCase{
		Orders:    deps.Orders,
		Publisher: deps.Publisher,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	}
	createOrder := commands.CreateOrderUseCase{
		Orders:    deps.Orders,
		Publisher: deps.Publisher,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	}
	cancelOrder := commands.CancelOrderUseCase{
		Orders:    deps.Orders,
		Publisher: deps.Publisher,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	}
	getOrder := queries.GetOrderUseCase{Orders: deps.Orders, Logger: deps.Logger}
	listOrders := queries.ListOrdersUseCase{Orders: deps.Orders, Logger: deps.Logger}

	consumer := workers.OrderEventConsumer{
		Subscriber:     deps.Subscriber,
		UpdateStatus:   updateStatus,
		Dedup:          deps.Dedup,
		ServiceName:    config.OrdersServiceName,
		ConsumerGroup:  deps.ConsumerGroup,
		PaymentTopic:   deps.PaymentTopic,
		InventoryTopic: deps.InventoryTopic,
		ShippingTopic:  deps.ShippingTopic,
		Logger:         deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			CreateOrder:  createOrder,
			UpdateStatus: updateStatus,
			CancelOrder:  cancelOrder,
			GetOrder:     getOrder,
			ListOrders:   listOrders,
			Logger:       deps.Logger,
		},
		Consumer:     consumer,
		UpdateStatus: updateStatus,
	}
}

// InMemoryModule wires the module against memory adapters and the given bus.
// Used by tests and DSN-less local runs.
func InMemoryModule(bus ports.EventBus, subscriber ports.EventSubscriber, cfg config.Config, logger *slog.Logger) Module {
	producer := &kafkaadapter.Producer{
		Bus:            bus,
		ServiceName:    config.OrdersServiceName,
		OrderTopic:     cfg.OrderTopic,
		InventoryTopic: cfg.InventoryTopic,
		PaymentTopic:   cfg.PaymentTopic,
		Logger:         logger,
	}
	return NewModule(Dependencies{
		Orders:         memory.NewStore(logger),
		Publisher:      producer,
		Subscriber:     subscriber,
		Dedup:          idempotency.NewStore(config.OrdersServiceName, cfg.EventDedupTTL, logger),
		ConsumerGroup:  cfg.OrdersConsumerGroup,
		PaymentTopic:   cfg.PaymentTopic,
		InventoryTopic: cfg.InventoryTopic,
		ShippingTopic:  cfg.ShippingTopic,
		Logger:         logger,
	})
}
