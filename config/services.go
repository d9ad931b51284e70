package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP API.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeWebhookConsumer consumes product webhooks from Kafka.
	ServiceModeWebhookConsumer ServiceMode = "webhook-consumer"
	// ServiceModeReaper closes bulk jobs orphaned by a crashed process.
	ServiceModeReaper ServiceMode = "reaper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{ServiceModeHTTP, ServiceModeWebhookConsumer, ServiceModeReaper}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	if strings.TrimSpace(servicesStr) == "" {
		return nil, errors.New("at least one service must be specified")
	}

	services := make(map[ServiceMode]bool)
	for part := range strings.SplitSeq(servicesStr, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		mode := ServiceMode(name)
		switch mode {
		case ServiceModeHTTP, ServiceModeWebhookConsumer, ServiceModeReaper:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, webhook-consumer, reaper)", name)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}
	return services, nil
}

// cronParser accepts standard five-field expressions and descriptors such as @every.
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ReaperConfig contains stale bulk job reaper configuration.
type ReaperConfig struct {
	// Schedule is a cron expression for reaper runs.
	Schedule string `env:"REAPER_SCHEDULE" envDefault:"*/5 * * * *"`

	// StaleAfter is how long an open job may go without a heartbeat before
	// it is failed. Running sweeps heartbeat after every page.
	StaleAfter time.Duration `env:"REAPER_STALE_AFTER" envDefault:"30m"`
}

// Sanitize applies guardrails to reaper configuration values.
func (r *ReaperConfig) Sanitize() {
	r.Schedule = strings.TrimSpace(r.Schedule)
	if r.StaleAfter < 5*time.Minute {
		r.StaleAfter = 5 * time.Minute
	}
}

// Validate checks the cron expression.
func (r *ReaperConfig) Validate() error {
	if _, err := r.ParsedSchedule(); err != nil {
		return fmt.Errorf("invalid REAPER_SCHEDULE %q: %w", r.Schedule, err)
	}
	return nil
}

// ParsedSchedule parses Schedule.
func (r *ReaperConfig) ParsedSchedule() (cron.Schedule, error) {
	return cronParser.Parse(r.Schedule)
}

// WebhookKafkaConfig configures the webhook consumer.
type WebhookKafkaConfig struct {
	Brokers []string `env:"BROKERS"  envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC"    envDefault:"shopify-webhooks"`
	GroupID string   `env:"GROUP_ID" envDefault:"captioner-webhooks"`
	// RetryBackoff is the first wait before a failed message is handled
	// again. Later waits double up to RetryMaxBackoff.
	RetryBackoff    time.Duration `env:"RETRY_BACKOFF"     envDefault:"5s"`
	RetryMaxBackoff time.Duration `env:"RETRY_MAX_BACKOFF" envDefault:"5m"`
	// DeadLetterTopic receives messages that kept failing. Empty disables
	// dead-lettering and the message is retried until it succeeds.
	DeadLetterTopic string `env:"DEAD_LETTER_TOPIC"`
	// DeadLetterAfter is the number of failures, not counting a busy shop,
	// before a message is dead-lettered.
	DeadLetterAfter int `env:"DEAD_LETTER_AFTER" envDefault:"10"`
}

// Sanitize trims broker addresses and drops empties.
func (k *WebhookKafkaConfig) Sanitize() {
	brokers := k.Brokers[:0]
	for _, b := range k.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	k.Brokers = brokers
	k.Topic = strings.TrimSpace(k.Topic)
	k.GroupID = strings.TrimSpace(k.GroupID)
	if k.RetryBackoff < 100*time.Millisecond {
		k.RetryBackoff = 100 * time.Millisecond
	}
	if k.RetryMaxBackoff < k.RetryBackoff {
		k.RetryMaxBackoff = k.RetryBackoff
	}
	k.DeadLetterTopic = strings.TrimSpace(k.DeadLetterTopic)
	if k.DeadLetterAfter < 1 {
		k.DeadLetterAfter = 1
	}
}

// Validate checks that the consumer can connect.
func (k *WebhookKafkaConfig) Validate() error {
	switch {
	case len(k.Brokers) == 0:
		return errors.New("WEBHOOK_KAFKA_BROKERS is required")
	case k.Topic == "":
		return errors.New("WEBHOOK_KAFKA_TOPIC is required")
	case k.GroupID == "":
		return errors.New("WEBHOOK_KAFKA_GROUP_ID is required")
	case k.DeadLetterTopic != "" && k.DeadLetterTopic == k.Topic:
		return errors.New("WEBHOOK_KAFKA_DEAD_LETTER_TOPIC must differ from WEBHOOK_KAFKA_TOPIC")
	}
	return nil
}
