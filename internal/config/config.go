// Package config loads service configuration from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// minExistenceTimeout rejects values that would make every lookup time out.
const minExistenceTimeout = time.Millisecond

const (
	PolicyPermissive = "permissive"
	PolicyStrict     = "strict"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	Port           string
	LogLevel       string

	PostgresURL string

	ProductsServiceURL  string
	CustomersServiceURL string
	OrdersServiceURL    string

	ExistenceTimeout time.Duration
	ExistencePolicy  string

	KafkaBrokers   []string
	AdmissionTopic string
	AuditorGroupID string

	OTLPEndpoint       string
	CORSAllowedOrigins []string
}

// Load builds the configuration for the named service. defaultPort is used when
// PORT is unset.
func Load(serviceName, defaultPort string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", defaultPort)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
	v.SetDefault("PRODUCTS_SERVICE_URL", "http://products-service:8000")
	v.SetDefault("CUSTOMERS_SERVICE_URL", "http://customers-service:8000")
	v.SetDefault("ORDERS_SERVICE_URL", "http://orders-service:8000")
	v.SetDefault("EXISTENCE_TIMEOUT", "5s")
	v.SetDefault("EXISTENCE_POLICY", PolicyPermissive)
	v.SetDefault("ADMISSION_TOPIC", "orders.admitted")
	v.SetDefault("AUDITOR_GROUP_ID", "admission-auditor")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	timeout, err := parseTimeout(v.GetString("EXISTENCE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Config{
		ServiceName:         serviceName,
		ServiceVersion:      v.GetString("SERVICE_VERSION"),
		Port:                v.GetString("PORT"),
		LogLevel:            strings.ToLower(v.GetString("LOG_LEVEL")),
		PostgresURL:         v.GetString("POSTGRES_URL"),
		ProductsServiceURL:  strings.TrimRight(v.GetString("PRODUCTS_SERVICE_URL"), "/"),
		CustomersServiceURL: strings.TrimRight(v.GetString("CUSTOMERS_SERVICE_URL"), "/"),
		OrdersServiceURL:    strings.TrimRight(v.GetString("ORDERS_SERVICE_URL"), "/"),
		ExistenceTimeout:    timeout,
		ExistencePolicy:     strings.ToLower(v.GetString("EXISTENCE_POLICY")),
		KafkaBrokers:        splitList(v.GetString("KAFKA_BROKERS")),
		AdmissionTopic:      v.GetString("ADMISSION_TOPIC"),
		AuditorGroupID:      v.GetString("AUDITOR_GROUP_ID"),
		OTLPEndpoint:        v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		CORSAllowedOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.ExistenceTimeout < minExistenceTimeout {
		return fmt.Errorf("EXISTENCE_TIMEOUT must be at least %s, got %s", minExistenceTimeout, c.ExistenceTimeout)
	}

	switch c.ExistencePolicy {
	case PolicyPermissive, PolicyStrict:
	default:
		return fmt.Errorf("invalid EXISTENCE_POLICY %q (must be %s or %s)", c.ExistencePolicy, PolicyPermissive, PolicyStrict)
	}

	return nil
}

// RequirePostgres is called by the services that own a store.
func (c *Config) RequirePostgres() error {
	if c.PostgresURL == "" {
		return errors.New("POSTGRES_URL environment variable is required")
	}
	return nil
}

func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", level)
}

// parseTimeout accepts a Go duration ("250ms") or a bare number of seconds ("5", "0.5").
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, fmt.Errorf("invalid EXISTENCE_TIMEOUT %q", raw)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid EXISTENCE_TIMEOUT %q: %w", raw, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
