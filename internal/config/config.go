package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Gateway  GatewayConfig
	Secrets  SecretsConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// RedisConfig holds Redis configuration for the distributed lock.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Enabled switches the payment lock from in-process to Redis-backed.
	Enabled bool
	// LockRetryBackoff is the delay between lock acquisition attempts.
	LockRetryBackoff time.Duration
	// LockTTL bounds how long a crashed holder can block other instances.
	LockTTL time.Duration
}

// GatewayConfig holds Monext gateway configuration
type GatewayConfig struct {
	BaseURL         string // Monext API base (homologation or production)
	APIKeySecret    string // secret-manager name holding the Basic auth key
	PointOfSale     string // point of sale reference assigned by Monext
	ContractNumbers []string
	CaptureMode     string // AUTOMATIC or MANUAL
	ReturnURL       string // browser return URL after hosted checkout
	NotificationURL string // webhook endpoint Monext calls with WEBTRS events
	// CaptureTransitions are the order transitions that trigger a manual
	// capture (e.g. "ship").
	CaptureTransitions []string
	HomeURL            string
	ThankYouURL        string
	Timeout            int // request timeout in seconds
}

// SecretsConfig selects and configures the secret manager backend.
type SecretsConfig struct {
	// Provider is one of "aws", "vault", "local".
	Provider string

	AWSRegion   string
	AWSProfile  string
	AWSEndpoint string

	VaultAddress   string
	VaultToken     string
	VaultMountPath string

	LocalPrefix string

	CacheTTL time.Duration
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "monext_gateway"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		},
		Redis: RedisConfig{
			Addr:             getEnv("REDIS_ADDR", "localhost:6379"),
			Password:         getEnv("REDIS_PASSWORD", ""),
			DB:               getEnvAsInt("REDIS_DB", 0),
			Enabled:          getEnvAsBool("REDIS_LOCK_ENABLED", false),
			LockRetryBackoff: getEnvAsDuration("REDIS_LOCK_RETRY_BACKOFF", 50*time.Millisecond),
			LockTTL:          getEnvAsDuration("REDIS_LOCK_TTL", 60*time.Second),
		},
		Gateway: GatewayConfig{
			BaseURL:            getEnv("MONEXT_BASE_URL", "https://api-sandbox.retail.monext.com/v1"),
			APIKeySecret:       getEnv("MONEXT_API_KEY_SECRET", "monext/api-key"),
			PointOfSale:        getEnv("MONEXT_POINT_OF_SALE", ""),
			ContractNumbers:    getEnvAsSlice("MONEXT_CONTRACT_NUMBERS", nil),
			CaptureMode:        getEnv("MONEXT_CAPTURE_MODE", "MANUAL"),
			ReturnURL:          getEnv("MONEXT_RETURN_URL", ""),
			NotificationURL:    getEnv("MONEXT_NOTIFICATION_URL", ""),
			CaptureTransitions: getEnvAsSlice("MONEXT_CAPTURE_TRANSITIONS", []string{"ship"}),
			HomeURL:            getEnv("MONEXT_HOME_URL", "/"),
			ThankYouURL:        getEnv("MONEXT_THANK_YOU_URL", "/checkout/thank-you"),
			Timeout:            getEnvAsInt("MONEXT_TIMEOUT", 30),
		},
		Secrets: SecretsConfig{
			Provider:       getEnv("SECRETS_PROVIDER", "local"),
			AWSRegion:      getEnv("AWS_REGION", "eu-west-1"),
			AWSProfile:     getEnv("AWS_PROFILE", ""),
			AWSEndpoint:    getEnv("AWS_SECRETS_ENDPOINT", ""),
			VaultAddress:   getEnv("VAULT_ADDR", ""),
			VaultToken:     getEnv("VAULT_TOKEN", ""),
			VaultMountPath: getEnv("VAULT_MOUNT_PATH", "secret"),
			LocalPrefix:    getEnv("LOCAL_SECRETS_PREFIX", ""),
			CacheTTL:       getEnvAsDuration("SECRETS_CACHE_TTL", 5*time.Minute),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Validate required fields
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Gateway.PointOfSale == "" {
		return nil, fmt.Errorf("MONEXT_POINT_OF_SALE is required")
	}
	if len(cfg.Gateway.ContractNumbers) == 0 {
		return nil, fmt.Errorf("MONEXT_CONTRACT_NUMBERS is required")
	}
	if cfg.Gateway.CaptureMode != "AUTOMATIC" && cfg.Gateway.CaptureMode != "MANUAL" {
		return nil, fmt.Errorf("MONEXT_CAPTURE_MODE must be AUTOMATIC or MANUAL, got %q", cfg.Gateway.CaptureMode)
	}
	switch cfg.Secrets.Provider {
	case "aws", "vault", "local":
	default:
		return nil, fmt.Errorf("SECRETS_PROVIDER must be aws, vault or local, got %q", cfg.Secrets.Provider)
	}

	return cfg, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

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

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
