// Package webhookconsumer delivers storefront webhooks published to Kafka
// into the webhook service.
package webhookconsumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/image-captioner/captioner/config"
	"github.com/image-captioner/captioner/internal/adapters/shopify"
	"github.com/image-captioner/captioner/internal/domain/model"
	apperrors "github.com/image-captioner/captioner/internal/errors"
)

const (
	commitTimeout     = 3 * time.Second
	deadLetterTimeout = 10 * time.Second
)

// Headers added to dead-lettered messages next to the original delivery headers.
const (
	HeaderDeadLetterError    = "X-Captioner-Dead-Letter-Error"
	HeaderDeadLetterSource   = "X-Captioner-Dead-Letter-Source"
	HeaderDeadLetterAttempts = "X-Captioner-Dead-Letter-Attempts"
)

// MessageReader is the subset of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer used for dead-lettering.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventHandler processes one product webhook. A nil error means the
// delivery is done and its offset may be committed.
type EventHandler interface {
	HandleProductCreated(ctx context.Context, event model.ProductCreatedEvent) error
}

// Options configures a Consumer.
type Options struct {
	Config  config.WebhookKafkaConfig
	Handler EventHandler
	Logger  *slog.Logger

	// Reader overrides the Kafka reader built from Config.
	Reader MessageReader
	// DeadLetter overrides the writer built from Config.DeadLetterTopic.
	DeadLetter MessageWriter
}

// Consumer reads webhook messages with manual commits. An offset is
// committed only after the handler succeeded, after a message was found to
// be malformed or invalid, or after the message was written to the
// dead-letter topic. Any other failure is retried with backoff, so a
// message is never skipped without a durable copy.
type Consumer struct {
	reader          MessageReader
	deadLetter      MessageWriter
	handler         EventHandler
	logger          *slog.Logger
	backoff         time.Duration
	maxBackoff      time.Duration
	deadLetterAfter int
}

// NewReader builds a consumer-group reader that never auto-commits.
func NewReader(cfg config.WebhookKafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
}

// NewDeadLetterWriter builds a writer for the dead-letter topic that waits
// for all in-sync replicas.
func NewDeadLetterWriter(cfg config.WebhookKafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.DeadLetterTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
}

// New constructs a Consumer.
func New(opts Options) (*Consumer, error) {
	if opts.Handler == nil {
		return nil, errors.New("webhook handler is required")
	}
	reader := opts.Reader
	if reader == nil {
		if err := opts.Config.Validate(); err != nil {
			return nil, err
		}
		reader = NewReader(opts.Config)
	}
	deadLetter := opts.DeadLetter
	if deadLetter == nil && opts.Config.DeadLetterTopic != "" {
		deadLetter = NewDeadLetterWriter(opts.Config)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	backoff := opts.Config.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	maxBackoff := max(opts.Config.RetryMaxBackoff, backoff)
	deadLetterAfter := opts.Config.DeadLetterAfter
	if deadLetterAfter <= 0 {
		deadLetterAfter = 1
	}
	return &Consumer{
		reader:          reader,
		deadLetter:      deadLetter,
		handler:         opts.Handler,
		logger:          logger.With("component", "webhook_consumer", "topic", opts.Config.Topic),
		backoff:         backoff,
		maxBackoff:      maxBackoff,
		deadLetterAfter: deadLetterAfter,
	}, nil
}

// Run consumes until ctx is cancelled. Returns nil on graceful shutdown.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.InfoContext(ctx, "starting webhook consumer", "dead_letter", c.deadLetter != nil)
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.WarnContext(ctx, "failed to close kafka reader", "error", err)
		}
		if c.deadLetter != nil {
			if err := c.deadLetter.Close(); err != nil {
				c.logger.WarnContext(ctx, "failed to close dead-letter writer", "error", err)
			}
		}
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.InfoContext(ctx, "webhook consumer stopping", "reason", ctx.Err())
				return nil
			}
			c.logger.ErrorContext(ctx, "fetch webhook message failed", "error", err)
			if !sleepCtx(ctx, c.backoff) {
				return nil
			}
			continue
		}

		if err := c.process(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// Leave the offset uncommitted; the group redelivers after a restart.
			c.logger.ErrorContext(ctx, "webhook message left uncommitted", "offset", msg.Offset, "error", err)
			continue
		}
		c.commit(ctx, msg)
	}
}

// process handles one message, retrying in place until it is settled. It
// returns an error only when ctx ended first.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	event, err := DecodeMessage(msg)
	if err != nil {
		c.logger.WarnContext(ctx, "dropping malformed webhook message",
			"partition", msg.Partition, "offset", msg.Offset, "error", err)
		return nil
	}

	failures := 0
	for attempt := 1; ; attempt++ {
		err := c.handler.HandleProductCreated(ctx, event)
		if err == nil {
			return nil
		}
		if apperrors.IsValidation(err) {
			c.logger.WarnContext(ctx, "dropping invalid webhook", "delivery_id", event.DeliveryID, "error", err)
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("webhook %s not settled: %w", event.DeliveryID, ctx.Err())
		}
		// A busy shop clears once the running pipeline finishes.
		if !apperrors.IsConflict(err) {
			failures++
		}

		level := slog.LevelWarn
		if failures >= c.deadLetterAfter {
			level = slog.LevelError
			if c.deadLetter != nil {
				dlErr := c.publishDeadLetter(ctx, msg, err, attempt)
				if dlErr == nil {
					c.logger.ErrorContext(ctx, "webhook dead-lettered",
						"delivery_id", event.DeliveryID, "attempts", attempt, "error", err)
					return nil
				}
				c.logger.ErrorContext(ctx, "dead-letter publish failed",
					"delivery_id", event.DeliveryID, "error", dlErr)
			}
		}

		wait := c.backoffFor(attempt)
		c.logger.Log(ctx, level, "webhook failed, retrying",
			"delivery_id", event.DeliveryID,
			"attempt", attempt,
			"failures", failures,
			"backoff", wait,
			"error", err,
		)
		if !sleepCtx(ctx, wait) {
			return fmt.Errorf("webhook %s not settled: %w", event.DeliveryID, ctx.Err())
		}
	}
}

// backoffFor doubles the base wait per attempt up to maxBackoff.
func (c *Consumer) backoffFor(attempt int) time.Duration {
	d := c.backoff
	for i := 1; i < attempt && d < c.maxBackoff; i++ {
		d *= 2
	}
	return min(d, c.maxBackoff)
}

// publishDeadLetter copies msg to the dead-letter topic with the failure
// recorded in headers.
func (c *Consumer) publishDeadLetter(ctx context.Context, msg kafka.Message, cause error, attempts int) error {
	headers := make([]kafka.Header, 0, len(msg.Headers)+3)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: HeaderDeadLetterError, Value: []byte(cause.Error())},
		kafka.Header{Key: HeaderDeadLetterSource, Value: []byte(sourceID(msg))},
		kafka.Header{Key: HeaderDeadLetterAttempts, Value: []byte(strconv.Itoa(attempts))},
	)

	wctx, cancel := context.WithTimeout(ctx, deadLetterTimeout)
	defer cancel()
	return c.deadLetter.WriteMessages(wctx, kafka.Message{
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
		Time:    time.Now(),
	})
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), commitTimeout)
	defer cancel()
	if err := c.reader.CommitMessages(cctx, msg); err != nil {
		// Not fatal: the message may be redelivered and the guard row absorbs it.
		c.logger.WarnContext(ctx, "commit webhook offset failed", "offset", msg.Offset, "error", err)
	}
}

// DecodeMessage builds an event from a Kafka message carrying the original
// delivery headers and body. Messages without a webhook id header fall back
// to a topic/partition/offset id, which is stable across redeliveries.
func DecodeMessage(msg kafka.Message) (model.ProductCreatedEvent, error) {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	event, err := shopify.ParseProductWebhook(func(k string) string { return headers[k] }, msg.Value)
	if err != nil {
		return event, err
	}
	if event.DeliveryID == "" {
		event.DeliveryID = sourceID(msg)
	}
	return event, nil
}

func sourceID(msg kafka.Message) string {
	return msg.Topic + "/" + strconv.Itoa(msg.Partition) + "/" + strconv.FormatInt(msg.Offset, 10)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
