package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/image-captioner/captioner/internal/core"
	"github.com/image-captioner/captioner/internal/data"
	"github.com/image-captioner/captioner/internal/domain/model"
	apperrors "github.com/image-captioner/captioner/internal/errors"
	"github.com/image-captioner/captioner/internal/observability/metrics"
	"github.com/image-captioner/captioner/internal/observability/statsd"
)

// WebhookServiceDeps groups the collaborators of the single-product pipeline.
type WebhookServiceDeps struct {
	Webhooks  core.WebhookRequestRepository // Required
	Sessions  core.ShopSessionRepository    // Required
	Catalogs  core.CatalogClientFactory     // Required
	Describer core.ImageDescriber           // Required
	Locker    core.ShopLocker               // Optional; defaults to an in-process lock
}

// WebhookServiceOptions groups dependencies for WebhookService.
type WebhookServiceOptions struct {
	Deps    WebhookServiceDeps
	Logger  *slog.Logger // Optional
	Metrics statsd.Sink  // Optional
}

// WebhookService captions newly created products exactly once per delivery.
type WebhookService struct {
	webhooks  core.WebhookRequestRepository
	sessions  core.ShopSessionRepository
	catalogs  core.CatalogClientFactory
	describer core.ImageDescriber
	locker    core.ShopLocker
	logger    *slog.Logger
	metrics   statsd.Sink
}

// NewWebhookService constructs a WebhookService.
func NewWebhookService(opts WebhookServiceOptions) (*WebhookService, error) {
	d := opts.Deps
	switch {
	case d.Webhooks == nil:
		return nil, errors.New("WebhookRequestRepository is required")
	case d.Sessions == nil:
		return nil, errors.New("ShopSessionRepository is required")
	case d.Catalogs == nil:
		return nil, errors.New("CatalogClientFactory is required")
	case d.Describer == nil:
		return nil, errors.New("ImageDescriber is required")
	}
	locker := d.Locker
	if locker == nil {
		locker = NewLocalShopLocker()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookService{
		webhooks:  d.Webhooks,
		sessions:  d.Sessions,
		catalogs:  d.Catalogs,
		describer: d.Describer,
		locker:    locker,
		logger:    logger.With("component", "webhook_service"),
		metrics:   opts.Metrics,
	}, nil
}

// HandleProductCreated runs the caption pipeline for one product webhook.
//
// A delivery that was already handled is a no-op. The guard row is written
// only after the storefront update succeeded, in the same transaction as the
// audit row, so a failure anywhere before that leaves the delivery eligible
// for redelivery. A returned error means the delivery should be retried.
func (s *WebhookService) HandleProductCreated(ctx context.Context, event model.ProductCreatedEvent) (err error) {
	result := metrics.ResultSuccess
	defer func() {
		if err != nil {
			result = metrics.ResultError
		}
		metrics.EmitWebhook(s.metrics, event.Topic, result, err)
	}()

	if event.Topic != model.TopicProductsCreate {
		result = metrics.ResultNoop
		s.logger.DebugContext(ctx, "ignoring webhook topic", "topic", event.Topic, "delivery_id", event.DeliveryID)
		return nil
	}
	if strings.TrimSpace(event.DeliveryID) == "" {
		return apperrors.ValidationField("delivery_id", "webhook delivery id is required")
	}
	productID := strings.TrimSpace(event.Payload.AdminGraphQLAPIID)
	if productID == "" {
		result = metrics.ResultNoop
		s.logger.WarnContext(ctx, "webhook payload has no product id", "delivery_id", event.DeliveryID)
		return nil
	}

	log := s.logger.With("delivery_id", event.DeliveryID, "shop_id", event.ShopDomain, "product_id", productID)

	seen, err := s.webhooks.Exists(ctx, event.DeliveryID)
	if err != nil {
		return fmt.Errorf("check webhook request: %w", err)
	}
	if seen {
		result = metrics.ResultNoop
		log.InfoContext(ctx, "webhook already handled")
		return nil
	}

	shopID := strings.ToLower(strings.TrimSpace(event.ShopDomain))
	catalog, err := resolveCatalog(ctx, s.sessions, s.catalogs, shopID)
	if err != nil {
		return err
	}

	unlock, acquired, err := s.locker.TryAcquire(ctx, shopID)
	if err != nil {
		return err
	}
	if !acquired {
		return apperrors.Wrap(ErrShopBusy, apperrors.ErrCodeConflict, "shop is busy")
	}
	defer unlock(context.WithoutCancel(ctx))

	handled, err := s.captionProduct(ctx, catalog, shopID, productID, event.DeliveryID)
	if err != nil {
		log.ErrorContext(ctx, "webhook pipeline failed", "error", err)
		return err
	}
	if !handled {
		result = metrics.ResultNoop
	}
	log.InfoContext(ctx, "webhook handled", "described", handled)
	return nil
}

// captionProduct reports whether a description was written.
func (s *WebhookService) captionProduct(
	ctx context.Context,
	catalog core.CatalogClient,
	shopID, productID, deliveryID string,
) (bool, error) {
	guard := model.WebhookRequest{ID: deliveryID}

	product, err := catalog.GetProduct(ctx, productID)
	if err != nil {
		return false, fmt.Errorf("get product %s: %w", productID, err)
	}

	url := product.ImageURL()
	if url == "" {
		return false, s.recordGuard(ctx, guard)
	}

	descriptions, err := s.describer.DescribeImages(ctx, shopID, []string{url})
	if err != nil {
		return false, err
	}
	desc := descriptions[url]
	if desc == "" {
		return false, s.recordGuard(ctx, guard)
	}

	if _, err := catalog.UpdateProductDescription(ctx, product.ID, desc); err != nil {
		return false, fmt.Errorf("update product %s: %w", product.ID, err)
	}

	err = s.webhooks.RecordWithUpdate(ctx, guard, model.DescriptionUpdate{
		ProductID:      product.ID,
		ShopID:         shopID,
		OldDescription: product.Description,
		NewDescription: desc,
	})
	if errors.Is(err, data.ErrWebhookRequestExists) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("record webhook request: %w", err)
	}
	return true, nil
}

func (s *WebhookService) recordGuard(ctx context.Context, guard model.WebhookRequest) error {
	err := s.webhooks.Record(ctx, guard)
	if err == nil || errors.Is(err, data.ErrWebhookRequestExists) {
		return nil
	}
	return fmt.Errorf("record webhook request: %w", err)
}
