package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Service identities stamped into publishedBy and compared by the self-origin
// filter. These are stable wire values, not display names.
const (
	OrdersServiceName   = "orders-service"
	PaymentsServiceName = "payments-service"
)

// Config is centralized process configuration. Keep infra values here and
// pass typed config into builders; nothing reads the environment elsewhere.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	// Logical topic names, overridable per environment.
	OrderTopic     string
	PaymentTopic   string
	InventoryTopic string
	ShippingTopic string
	RefundTopic   string

	// CommunicationTopic is reserved for the notification pipeline; no
	// component in this module produces or consumes it yet.
	CommunicationTopic string

	OrdersConsumerGroup   string
	PaymentsConsumerGroup string

	// EventDedupTTL bounds the per-process idempotency window.
	EventDedupTTL time.Duration

	EnableOrdersConsumer   bool
	EnablePaymentsConsumer bool

	MetricsEnabled bool

	DBMaxOpenConnections int
	DBMaxIdleConnections int
	DBConnMaxLifetime    time.Duration
}

// Load reads configuration from the environment (and a .env file when one is
// found in the working directory or above it).
func Load() (Config, error) {
	loadDotEnv()

	var brokers []string
	for _, value := range strings.Split(env.GetString("KAFKA_BROKERS", "localhost:9092"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}

	return Config{
		ServiceName:  env.GetString("SERVICE_NAME", "shopstream"),
		HTTPPort:     env.GetString("HTTP_PORT", "8080"),
		PostgresDSN:  env.GetString("POSTGRES_DSN", ""),
		KafkaBrokers: brokers,

		OrderTopic:         env.GetString("KAFKA_TOPIC_ORDERS", "order-events"),
		PaymentTopic:       env.GetString("KAFKA_TOPIC_PAYMENTS", "payment-events"),
		InventoryTopic:     env.GetString("KAFKA_TOPIC_INVENTORY", "inventory-events"),
		ShippingTopic:      env.GetString("KAFKA_TOPIC_SHIPPING", "shipping-events"),
		RefundTopic:        env.GetString("KAFKA_TOPIC_REFUNDS", "refund-events"),
		CommunicationTopic: env.GetString("KAFKA_TOPIC_COMMUNICATION", "send-communication"),

		OrdersConsumerGroup:   env.GetString("KAFKA_GROUP_ID_ORDERS", "orders-events"),
		PaymentsConsumerGroup: env.GetString("KAFKA_GROUP_ID_PAYMENTS", "payment-events"),

		EventDedupTTL: env.GetDuration("EVENT_DEDUP_TTL_SECONDS", 3600, time.Second),

		EnableOrdersConsumer:   env.GetBool("ENABLE_ORDERS_CONSUMER", true),
		EnablePaymentsConsumer: env.GetBool("ENABLE_PAYMENTS_CONSUMER", true),

		MetricsEnabled: env.GetBool("METRICS_ENABLED", true),

		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),
	}, nil
}

// loadDotEnv walks up from the working directory looking for a .env file.
// Missing files are fine; real deployments configure the environment directly.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		candidate := filepath.Join(dir, ".env")
		if _, err := os.Stat(candidate); err == nil {
			_ = godotenv.Load(candidate)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
