package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/image-captioner/captioner/config"
	"github.com/image-captioner/captioner/internal/adapters/reaper"
	"github.com/image-captioner/captioner/internal/adapters/webhookconsumer"
	"github.com/image-captioner/captioner/internal/observability/statsd"
)

// ReaperConfig contains configuration for reaper.
type ReaperConfig struct {
	DB      *sql.DB
	Logger  *slog.Logger
	Config  config.ReaperConfig
	Metrics statsd.Sink
}

// RunReaper starts the reaper service.
func RunReaper(ctx context.Context, cfg ReaperConfig) error {
	runner, err := reaper.NewRunner(reaper.RunnerOptions{
		DB:      cfg.DB,
		Config:  cfg.Config,
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create reaper runner: %w", err)
	}

	return runner.Run(ctx)
}

// WebhookConsumerConfig contains configuration for the Kafka webhook consumer.
type WebhookConsumerConfig struct {
	Config  config.WebhookKafkaConfig
	Handler webhookconsumer.EventHandler
	Logger  *slog.Logger
}

// RunWebhookConsumer consumes product webhooks until ctx is cancelled.
func RunWebhookConsumer(ctx context.Context, cfg WebhookConsumerConfig) error {
	consumer, err := webhookconsumer.New(webhookconsumer.Options{
		Config:  cfg.Config,
		Handler: cfg.Handler,
		Logger:  cfg.Logger,
	})
	if err != nil {
		return fmt.Errorf("create webhook consumer: %w", err)
	}
	return consumer.Run(ctx)
}
