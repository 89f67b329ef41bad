package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const envProduction = "production"

// Config holds all application configuration.
type Config struct {
	Env      string         `envconfig:"APP_ENV" default:"development"`
	Server   ServerConfig   `envconfig:"SERVER"`
	Database DatabaseConfig `envconfig:"DB"`
	Logger   LoggerConfig   `envconfig:"LOG"`
	Auth     AuthConfig     `envconfig:"AUTH"`
	Order    OrderConfig    `envconfig:"ORDER"`
	S3       S3Config       `envconfig:"S3"`
	Receipt  ReceiptConfig  `envconfig:"RECEIPT"`
	SQS      SQSConfig      `envconfig:"SQS"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host           string   `default:"0.0.0.0"`
	Port           int      `default:"8080"`
	AllowedOrigins []string `split_words:"true" default:"*"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host             string        `default:"localhost"`
	Port             int           `default:"5432"`
	User             string        `default:"postgres"`
	Password         string
	Name             string        `default:"betterbeing"`
	MaxConnections   int           `split_words:"true" default:"20"`
	MinConnections   int           `split_words:"true" default:"2"`
	MaxConnLifetime  time.Duration `split_words:"true" default:"5m"`
	StatementTimeout time.Duration `split_words:"true" default:"30s"`
	IdleInTxTimeout  time.Duration `split_words:"true" default:"60s"`
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `default:"info"`
	Format string `default:"json"` // "json" or "console"
}

// AuthConfig holds authentication configuration. APIKey guards the
// administrative routes, JWTSecret verifies customer bearer tokens.
type AuthConfig struct {
	APIKey    string `split_words:"true"`
	JWTSecret string `split_words:"true"`
}

// OrderConfig holds the pricing rules and order-number settings.
type OrderConfig struct {
	TaxRate               decimal.Decimal `split_words:"true" default:"0.15"`
	ShippingFee           decimal.Decimal `split_words:"true" default:"50"`
	FreeShippingThreshold decimal.Decimal `split_words:"true" default:"500"`
	NumberAttempts        int             `split_words:"true" default:"3"`
}

// S3Config holds AWS S3 configuration for the receipt archive.
type S3Config struct {
	Enabled bool   `default:"false"`
	Bucket  string
	Region  string `default:"us-east-1"`
	Prefix  string `default:"receipts/"` // Path prefix within bucket
}

// ReceiptConfig holds the local receipt archive settings.
type ReceiptConfig struct {
	Enabled bool   `default:"true"`
	Dir     string `default:"./data/receipts"`
}

// SQSConfig holds the order event queue settings.
type SQSConfig struct {
	Enabled  bool   `default:"false"`
	QueueURL string `split_words:"true"`
	Region   string `default:"us-east-1"`
}

// Load loads configuration from an optional .env file and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == envProduction
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Name == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 0 {
		return fmt.Errorf("database min connections cannot be negative")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Database.StatementTimeout < 0 || c.Database.IdleInTxTimeout < 0 {
		return fmt.Errorf("database timeouts cannot be negative")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Order.TaxRate.IsNegative() || c.Order.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("invalid tax rate: %s (must be in [0, 1))", c.Order.TaxRate)
	}

	if c.Order.ShippingFee.IsNegative() || c.Order.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("shipping fee and free shipping threshold cannot be negative")
	}

	if c.Order.NumberAttempts < 1 {
		return fmt.Errorf("order number attempts must be at least 1")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.SQS.Enabled && c.SQS.QueueURL == "" {
		return fmt.Errorf("SQS queue URL is required when SQS is enabled")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
