package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	ordersservice "shopstream/contexts/commerce/orders-service"
	orderskafka "shopstream/contexts/commerce/orders-service/adapters/kafka"
	ordersmemory "shopstream/contexts/commerce/orders-service/adapters/memory"
	orderspostgres "shopstream/contexts/commerce/orders-service/adapters/postgres"
	ordersports "shopstream/contexts/commerce/orders-service/ports"
	paymentsservice "shopstream/contexts/commerce/payments-service"
	"shopstream/contexts/commerce/payments-service/adapters/gateway"
	paymentskafka "shopstream/contexts/commerce/payments-service/adapters/kafka"
	paymentsmemory "shopstream/contexts/commerce/payments-service/adapters/memory"
	paymentspostgres "shopstream/contexts/commerce/payments-service/adapters/postgres"
	paymentsports "shopstream/contexts/commerce/payments-service/ports"
	"shopstream/internal/platform/config"
	"shopstream/internal/platform/db"
	"shopstream/internal/platform/httpserver"
	"shopstream/internal/platform/messaging"
	"shopstream/internal/platform/metrics"
	"shopstream/internal/shared/idempotency"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type consumer interface {
	Start(ctx context.Context) error
}

// App is one running service process: its HTTP surface, its event consumer
// and the infrastructure they share.
type App struct {
	server   *httpserver.Server
	consumer consumer
	bus      *messaging.Kafka
	postgres *db.Postgres
	logger   *slog.Logger
}

// BuildOrders assembles the orders service. A missing POSTGRES_DSN falls back
// to the in-memory store, which keeps local runs broker- and database-free.
func BuildOrders() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", config.OrdersServiceName)
	if cfg.MetricsEnabled {
		metrics.Register()
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	var (
		repo  ordersports.OrderRepository
		pg    *db.Postgres
		clock ordersports.Clock = orderspostgres.SystemClock{}
	)
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg)
		if err != nil {
			return nil, err
		}
		repo = orderspostgres.NewRepository(pg.DB, logger)
	} else {
		logger.Warn("no postgres dsn configured, using in-memory order store",
			"event", "bootstrap_memory_fallback",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		repo = ordersmemory.NewStore(logger)
	}

	producer := &orderskafka.Producer{
		Bus:            bus,
		ServiceName:    config.OrdersServiceName,
		OrderTopic:     cfg.OrderTopic,
		InventoryTopic: cfg.InventoryTopic,
		PaymentTopic:   cfg.PaymentTopic,
		Clock:          clock,
		Logger:         logger,
	}
	module := ordersservice.NewModule(ordersservice.Dependencies{
		Orders:         repo,
		Publisher:      producer,
		Subscriber:     bus,
		Dedup:          idempotency.NewStore(config.OrdersServiceName, cfg.EventDedupTTL, logger),
		Clock:          clock,
		ConsumerGroup:  cfg.OrdersConsumerGroup,
		PaymentTopic:   cfg.PaymentTopic,
		InventoryTopic: cfg.InventoryTopic,
		ShippingTopic:  cfg.ShippingTopic,
		Logger:         logger,
	})

	server := httpserver.New(logger, normalizeAddr(cfg.HTTPPort))
	server.MountOrders(module)

	app := &App{
		server:   server,
		bus:      bus,
		postgres: pg,
		logger:   logger,
	}
	if cfg.EnableOrdersConsumer {
		app.consumer = module.Consumer
	}
	return app, nil
}

// BuildPayments assembles the payments service.
func BuildPayments() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", config.PaymentsServiceName)
	if cfg.MetricsEnabled {
		metrics.Register()
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	var (
		repo  paymentsports.PaymentRepository
		pg    *db.Postgres
		clock paymentsports.Clock = paymentspostgres.SystemClock{}
	)
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg)
		if err != nil {
			return nil, err
		}
		repo = paymentspostgres.NewRepository(pg.DB, logger)
	} else {
		logger.Warn("no postgres dsn configured, using in-memory payment store",
			"event", "bootstrap_memory_fallback",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		repo = paymentsmemory.NewStore(logger)
	}

	producer := &paymentskafka.Producer{
		Bus:          bus,
		ServiceName:  config.PaymentsServiceName,
		PaymentTopic: cfg.PaymentTopic,
		RefundTopic:  cfg.RefundTopic,
		Clock:        clock,
		Logger:       logger,
	}
	module := paymentsservice.NewModule(paymentsservice.Dependencies{
		Payments:      repo,
		Gateway:       &gateway.SimulatedClient{Logger: logger},
		Publisher:     producer,
		Subscriber:    bus,
		Dedup:         idempotency.NewStore(config.PaymentsServiceName, cfg.EventDedupTTL, logger),
		IDs:           paymentsmemory.UUIDGenerator{},
		Clock:         clock,
		ConsumerGroup: cfg.PaymentsConsumerGroup,
		OrderTopic:    cfg.OrderTopic,
		Logger:        logger,
	})

	server := httpserver.New(logger, normalizeAddr(cfg.HTTPPort))
	server.MountPayments(module)

	app := &App{
		server:   server,
		bus:      bus,
		postgres: pg,
		logger:   logger,
	}
	if cfg.EnablePaymentsConsumer {
		app.consumer = module.Consumer
	}
	return app, nil
}

// Run starts the consumer and the HTTP server and blocks until ctx is
// cancelled, then drains in flight work.
func (a *App) Run(ctx context.Context) error {
	if a.consumer != nil {
		if err := a.consumer.Start(ctx); err != nil {
			// The HTTP surface still serves reads and writes; only the
			// event-driven reactions are lost.
			a.logger.Warn("event consumer failed to start",
				"event", "bootstrap_consumer_start_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
	}

	a.logger.Info("app started",
		"event", "bootstrap_app_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.bus.Drain()
	return <-errCh
}

func (a *App) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
