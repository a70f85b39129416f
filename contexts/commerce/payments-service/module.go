package paymentsservice

import (
	"log/slog"

	"shopstream/contexts/commerce/payments-service/adapters/gateway"
	httpadapter "shopstream/contexts/commerce/payments-service/adapters/http"
	kafkaadapter "shopstream/contexts/commerce/payments-service/adapters/kafka"
	"shopstream/contexts/commerce/payments-service/adapters/memory"
	"shopstream/contexts/commerce/payments-service/application/commands"
	"shopstream/contexts/commerce/payments-service/application/queries"
	"shopstream/contexts/commerce/payments-service/application/workers"
	"shopstream/contexts/commerce/payments-service/ports"
	"shopstream/internal/platform/config"
	"shopstream/internal/shared/idempotency"
)

// Module is the composition surface for the payments service. Runtime wiring
// consumes Handler and Consumer.
type Module struct {
	Handler  httpadapter.Handler
	Consumer workers.PaymentEventConsumer
}

type Dependencies struct {
	Payments   ports.PaymentRepository
	Gateway    ports.GatewayClient
	Publisher  ports.PaymentEventPublisher
	Subscriber ports.EventSubscriber
	Dedup      ports.EventDedupStore
	IDs        ports.IDGenerator
	Clock      ports.Clock

	ConsumerGroup string
	OrderTopic    string

	Logger *slog.Logger
}

// NewModule wires the payments use-cases against explicit ports.
func NewModule(deps Dependencies) Module {
	processPayment := commands.ProcessPaymentUseCase{
		Payments:  deps.Payments,
		Gateway:   deps.Gateway,
		Publisher: deps.Publisher,
		IDs:       deps.IDs,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	}
	refundPayment := commands.RefundPaymentUseCase{
		Payments:  deps.Payments,
		Gateway:   deps.Gateway,
		Publisher: deps.Publisher,
		IDs:       deps.IDs,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	}
	getPayment := queries.GetPaymentUseCase{Payments: deps.Payments, Logger: deps.Logger}
	listPayments := queries.ListPaymentsUseCase{Payments: deps.Payments, Logger: deps.Logger}

	consumer := workers.PaymentEventConsumer{
		Subscriber:    deps.Subscriber,
		Payments:      deps.Payments,
		Refund:        refundPayment,
		Dedup:         deps.Dedup,
		ServiceName:   config.PaymentsServiceName,
		ConsumerGroup: deps.ConsumerGroup,
		OrderTopic:    deps.OrderTopic,
		Logger:        deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			ProcessPayment: processPayment,
			RefundPayment:  refundPayment,
			GetPayment:     getPayment,
			ListPayments:   listPayments,
			Logger:         deps.Logger,
		},
		Consumer: consumer,
	}
}

// InMemoryModule wires the module against memory adapters and the given bus.
// Used by tests and DSN-less local runs.
func InMemoryModule(bus ports.EventBus, subscriber ports.EventSubscriber, cfg config.Config, logger *slog.Logger) Module {
	producer := &kafkaadapter.Producer{
		Bus:          bus,
		ServiceName:  config.PaymentsServiceName,
		PaymentTopic: cfg.PaymentTopic,
		RefundTopic:  cfg.RefundTopic,
		Logger:       logger,
	}
	return NewModule(Dependencies{
		Payments:      memory.NewStore(logger),
		Gateway:       &gateway.SimulatedClient{Logger: logger},
		Publisher:     producer,
		Subscriber:    subscriber,
		Dedup:         idempotency.NewStore(config.PaymentsServiceName, cfg.EventDedupTTL, logger),
		IDs:           memory.UUIDGenerator{},
		ConsumerGroup: cfg.PaymentsConsumerGroup,
		OrderTopic:    cfg.OrderTopic,
		Logger:        logger,
	})
}
