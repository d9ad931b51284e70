package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - database.go: Postgres and Redis
//   - http.go: HTTP server
//   - services.go: service modes, reaper and webhook consumer
//   - captioning.go: Visionati, Shopify, catalog paging and bulk jobs
//   - observability.go: metrics
type AppConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	HTTP HTTPConfig

	// Services is a comma-delimited list of service modes to run.
	Services string `env:"SERVICES" envDefault:"http"`

	Visionati VisionatiConfig `envPrefix:"VISIONATI_"`
	Shopify   ShopifyConfig   `envPrefix:"SHOPIFY_"`
	Catalog   CatalogConfig   `envPrefix:"CATALOG_"`
	Bulk      BulkConfig      `envPrefix:"BULK_"`

	Reaper        ReaperConfig
	WebhookKafka  WebhookKafkaConfig `envPrefix:"WEBHOOK_KAFKA_"`
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
func (c *AppConfig) Sanitize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Postgres.Sanitize()
	c.HTTP.Sanitize()
	c.Visionati.Sanitize()
	c.Shopify.Sanitize()
	c.Catalog.Sanitize()
	c.Bulk.Sanitize()
	c.Reaper.Sanitize()
	c.WebhookKafka.Sanitize()
	c.Observability.Sanitize()
}

// Validate reports settings that cannot be fixed up by Sanitize.
func (c *AppConfig) Validate() error {
	services, err := c.GetEnabledServices()
	if err != nil {
		return err
	}
	var errs []error
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if services[ServiceModeReaper] {
		if err := c.Reaper.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if services[ServiceModeWebhookConsumer] {
		if err := c.WebhookKafka.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SlogLevel converts LogLevel to a slog.Level.
func (c *AppConfig) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

func (c *AppConfig) serviceEnabled(mode ServiceMode) bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[mode]
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool { return c.serviceEnabled(ServiceModeHTTP) }

// IsWebhookConsumerEnabled returns true if the Kafka webhook consumer is enabled.
func (c *AppConfig) IsWebhookConsumerEnabled() bool {
	return c.serviceEnabled(ServiceModeWebhookConsumer)
}

// IsReaperEnabled returns true if the stale-job reaper is enabled.
func (c *AppConfig) IsReaperEnabled() bool { return c.serviceEnabled(ServiceModeReaper) }
