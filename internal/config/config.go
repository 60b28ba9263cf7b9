package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	ServiceName string
	ServicePort int
	LogLevel    string
	Database    DatabaseConfig
	Redis       RedisConfig
	RabbitMQ    RabbitMQConfig
	Pipeline    PipelineConfig
}

// DatabaseConfig holds store connection settings. The URL scheme selects
// the backend: postgres, mongodb or memory.
type DatabaseConfig struct {
	URL         string
	Name        string
	AutoMigrate bool
	Timeout     time.Duration
}

// RedisConfig holds the optional office cache settings
type RedisConfig struct {
	URL       string
	OfficeTTL time.Duration
}

// RabbitMQConfig holds RabbitMQ connection and queue settings
type RabbitMQConfig struct {
	URL           string
	Queue         string
	PrefetchCount int
	Workers       int
}

// PipelineConfig holds check-in handling policy
type PipelineConfig struct {
	// AckOnFailure acknowledges messages whose processing failed for
	// operational reasons instead of requeueing them.
	AckOnFailure bool
	// AutoRegisterDevices stores the first device seen for a user with
	// no registered fingerprint.
	AutoRegisterDevices bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "attendance-ingestion-worker"),
		ServicePort: getEnvAsInt("SERVICE_PORT", 3000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Database: DatabaseConfig{
			URL:         getEnv("DATABASE_URL", getEnv("MONGO_URI", "")),
			Name:        getEnv("DATABASE_NAME", "AttendEase"),
			AutoMigrate: getEnvAsBool("DATABASE_AUTO_MIGRATE", true),
			Timeout:     getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			OfficeTTL: getEnvAsDuration("OFFICE_CACHE_TTL", 5*time.Minute),
		},
		RabbitMQ: RabbitMQConfig{
			URL:           getEnv("RABBITMQ_URL", getEnv("AMQP_URL", "")),
			Queue:         getEnv("RABBITMQ_QUEUE", "attendease-queue"),
			PrefetchCount: getEnvAsInt("RABBITMQ_PREFETCH", 10),
			Workers:       getEnvAsInt("CONSUMER_WORKERS", 1),
		},
		Pipeline: PipelineConfig{
			AckOnFailure:        getEnvAsBool("ACK_ON_FAILURE", true),
			AutoRegisterDevices: getEnvAsBool("DEVICE_AUTO_REGISTER", false),
		},
	}

	// Validate required fields
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL (or MONGO_URI) is required but not set in environment variables")
	}
	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL (or AMQP_URL) is required but not set in environment variables")
	}
	if cfg.RabbitMQ.Workers < 1 {
		return nil, fmt.Errorf("CONSUMER_WORKERS must be at least 1, got %d", cfg.RabbitMQ.Workers)
	}
	if cfg.Database.Timeout <= 0 {
		return nil, fmt.Errorf("STORE_TIMEOUT must be positive, got %s", cfg.Database.Timeout)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
