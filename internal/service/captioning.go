package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/image-captioner/captioner/internal/core"
	"github.com/image-captioner/captioner/internal/data"
	"github.com/image-captioner/captioner/internal/domain/model"
	apperrors "github.com/image-captioner/captioner/internal/errors"
	"github.com/image-captioner/captioner/internal/observability/metrics"
	"github.com/image-captioner/captioner/internal/observability/statsd"
)

// CaptionServiceOptions groups dependencies for CaptionService.
type CaptionServiceOptions struct {
	Settings core.CaptionSettingsRepository // Required
	Backend  core.CaptionBackend            // Required
	Config   CaptionConfig
	Logger   *slog.Logger // Optional
	Metrics  statsd.Sink  // Optional
}

// CaptionConfig holds process-wide captioning defaults.
type CaptionConfig struct {
	// DefaultAPIKey is used for shops without their own key.
	DefaultAPIKey string
}

// CaptionService applies a shop's caption settings to a backend batch call
// and keeps the shop's credit balance in sync.
type CaptionService struct {
	settings core.CaptionSettingsRepository
	backend  core.CaptionBackend
	apiKey   string
	logger   *slog.Logger
	metrics  statsd.Sink
}

var (
	_ core.ImageDescriber     = (*CaptionService)(nil)
	_ core.CaptionCredentials = (*CaptionService)(nil)
)

// NewCaptionService constructs a CaptionService.
func NewCaptionService(opts CaptionServiceOptions) (*CaptionService, error) {
	if opts.Settings == nil {
		return nil, errors.New("CaptionSettingsRepository is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("CaptionBackend is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CaptionService{
		settings: opts.Settings,
		backend:  opts.Backend,
		apiKey:   opts.Config.DefaultAPIKey,
		logger:   logger.With("component", "caption_service"),
		metrics:  opts.Metrics,
	}, nil
}

// DescribeImages captions urls with the shop's backend, role and prompt.
// The reported credit balance is persisted before returning; a failure to do
// so fails the call even though the descriptions were produced.
func (s *CaptionService) DescribeImages(ctx context.Context, shopID string, urls []string) (map[string]string, error) {
	if len(urls) == 0 {
		return map[string]string{}, nil
	}

	req, err := s.buildRequest(ctx, shopID, urls)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := s.backend.Describe(ctx, req)
	metrics.EmitCaptionBatch(s.metrics, string(req.Backend), len(urls), time.Since(start), err)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstream, "caption images")
	}

	if res.Credits != nil {
		if err := s.settings.UpdateCredits(ctx, shopID, *res.Credits); err != nil {
			return nil, fmt.Errorf("persist caption credits: %w", err)
		}
	}

	s.logger.DebugContext(ctx, "captioned images",
		"shop_id", shopID,
		"backend", req.Backend,
		"requested", len(urls),
		"returned", len(res.Descriptions),
	)

	if res.Descriptions == nil {
		return map[string]string{}, nil
	}
	return res.Descriptions, nil
}

// CheckCredentials reports a configuration error when the shop has no
// captioning API key of its own and no default key is set.
func (s *CaptionService) CheckCredentials(ctx context.Context, shopID string) error {
	_, _, err := s.resolveKey(ctx, shopID)
	return err
}

func (s *CaptionService) buildRequest(ctx context.Context, shopID string, urls []string) (model.CaptionRequest, error) {
	settings, apiKey, err := s.resolveKey(ctx, shopID)
	if err != nil {
		return model.CaptionRequest{}, err
	}
	return model.CaptionRequest{
		APIKey:       apiKey,
		Backend:      settings.EffectiveBackend(),
		Role:         settings.EffectiveRole(),
		CustomPrompt: settings.EffectiveCustomPrompt(),
		URLs:         urls,
	}, nil
}

// resolveKey loads the shop's settings, which may be nil, and picks the key
// a batch call would use.
func (s *CaptionService) resolveKey(ctx context.Context, shopID string) (*model.CaptionSettings, string, error) {
	settings, err := s.settings.Get(ctx, shopID)
	switch {
	case errors.Is(err, data.ErrCaptionSettingsNotFound):
		settings = nil
	case err != nil:
		return nil, "", fmt.Errorf("load caption settings: %w", err)
	}

	apiKey := s.apiKey
	if settings != nil && settings.APIKey != nil && *settings.APIKey != "" {
		apiKey = *settings.APIKey
	}
	if apiKey == "" {
		return nil, "", apperrors.Configurationf("no captioning API key configured for shop %s", shopID)
	}
	return settings, apiKey, nil
}
