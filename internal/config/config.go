// Package config provides configuration structures and validation for the application.
// It handles environment-based configuration for all major components including
// server settings, database connections, message queues, FX rate sourcing,
// settlement verification, and payout progression.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration with settings for all components.
// Each field represents a major subsystem's configuration (e.g., HTTP server, databases,
// message queues) and is validated during application startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Auth        AuthConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Fx          FxConfig
	Verifier    VerifierConfig
	Cashout     CashoutConfig
	Sweep       SweepConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// AuthConfig contains bearer-token authentication configuration
type AuthConfig struct {
	JWTSecret string
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	PayoutTopic       string
	NumPartitions     int // Number of partitions for topics
	ReplicationFactor int // Replication factor for topics
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Topic for Dead Letter Queue
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// FxConfig contains fee and exchange-rate configuration. Rates are decimal
// strings so no float conversion happens before the quote engine parses them.
type FxConfig struct {
	FeeBps            int64  // Fee in basis points of the principal
	BaseRate          string // Configured USD to local base rate
	Spread            string // Absolute spread added to the base rate
	LiveSpreadPct     string // Percentage spread applied on top of live rates
	UseLiveRates      bool   // Quote from the live provider chain when possible
	ProviderTimeout   time.Duration
	CacheTTL          time.Duration
	FixerAPIKey       string
	OpenExchangeAppID string
}

// VerifierConfig contains settlement verification configuration. Sandbox mode
// is forced on when no hub contract address is configured.
type VerifierConfig struct {
	SandboxMode  bool
	RPCURL       string
	HubAddress   string
	TokenAddress string
	Timeout      time.Duration
}

// CashoutConfig contains payout progression configuration
type CashoutConfig struct {
	QueuedDelay     time.Duration // Delay before QUEUED moves to PROCESSING
	ProcessingDelay time.Duration // Delay before PROCESSING resolves
	FailurePercent  int           // Share of payouts resolving to FAILED
}

// SweepConfig contains background sweeper configuration
type SweepConfig struct {
	Interval  time.Duration
	BatchSize int
	Grace     time.Duration // How far past due before the sweeper re-drives a step
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// validate performs comprehensive validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate Auth config
	if c.Auth.JWTSecret == "" {
		validationErrors = append(validationErrors, "AUTH_JWT_SECRET is required")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.PayoutTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_PAYOUT_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate Fx config
	if c.Fx.FeeBps < 0 {
		validationErrors = append(validationErrors, "FX_FEE_BPS must not be negative")
	}
	if c.Fx.BaseRate == "" {
		validationErrors = append(validationErrors, "FX_BASE_RATE is required")
	}
	if c.Fx.Spread == "" {
		validationErrors = append(validationErrors, "FX_SPREAD is required")
	}
	if c.Fx.ProviderTimeout <= 0 {
		validationErrors = append(validationErrors, "FX_PROVIDER_TIMEOUT must be greater than 0")
	}
	if c.Fx.CacheTTL <= 0 {
		validationErrors = append(validationErrors, "FX_CACHE_TTL must be greater than 0")
	}

	// Validate Verifier config
	if c.Verifier.Timeout <= 0 {
		validationErrors = append(validationErrors, "VERIFIER_TIMEOUT must be greater than 0")
	}
	if !c.Verifier.SandboxMode && c.Verifier.RPCURL == "" {
		validationErrors = append(validationErrors, "VERIFIER_RPC_URL is required outside sandbox mode")
	}

	// Validate Cashout config
	if c.Cashout.QueuedDelay <= 0 {
		validationErrors = append(validationErrors, "CASHOUT_QUEUED_DELAY must be greater than 0")
	}
	if c.Cashout.ProcessingDelay <= 0 {
		validationErrors = append(validationErrors, "CASHOUT_PROCESSING_DELAY must be greater than 0")
	}
	if c.Cashout.FailurePercent < 0 || c.Cashout.FailurePercent > 100 {
		validationErrors = append(validationErrors, "CASHOUT_FAILURE_PERCENT must be between 0 and 100")
	}

	// Validate Sweep config
	if c.Sweep.Interval <= 0 {
		validationErrors = append(validationErrors, "SWEEP_INTERVAL must be greater than 0")
	}
	if c.Sweep.BatchSize <= 0 {
		validationErrors = append(validationErrors, "SWEEP_BATCH_SIZE must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
