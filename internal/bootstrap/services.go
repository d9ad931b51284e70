package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/image-captioner/captioner/config"
	"github.com/image-captioner/captioner/internal/adapters/shopify"
	"github.com/image-captioner/captioner/internal/adapters/visionati"
	"github.com/image-captioner/captioner/internal/core"
	"github.com/image-captioner/captioner/internal/data"
	"github.com/image-captioner/captioner/internal/observability/statsd"
	"github.com/image-captioner/captioner/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	BulkUpdates    *service.BulkUpdateService
	Classification *service.ClassificationService
	Webhooks       *service.WebhookService
	Captions       *service.CaptionService
	WriteBack      *service.WriteBackService
	Locker         core.ShopLocker
	Repos          *serviceRepositories
	Metrics        *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient // nil when Redis is disabled
	Logger      *slog.Logger

	// HTTPClient overrides the outbound client for both remote APIs.
	HTTPClient *http.Client
}

type serviceRepositories struct {
	Sessions     *data.ShopSessionRepo
	Settings     *data.CaptionSettingsRepo
	Jobs         *data.BulkUpdateRepo
	Updates      *data.DescriptionUpdateRepo
	WebhookGuard *data.WebhookRequestRepo
	Cache        core.CacheRepository // nil when Redis is disabled
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, client redis.UniversalClient) *serviceRepositories {
	tp := &data.RealTimeProvider{}
	repos := &serviceRepositories{
		Sessions:     data.NewShopSessionRepo(db),
		Settings:     data.NewCaptionSettingsRepo(db),
		Jobs:         data.NewBulkUpdateRepo(db, data.BulkRepoConfig{TimeProvider: tp}),
		Updates:      data.NewDescriptionUpdateRepo(db, tp),
		WebhookGuard: data.NewWebhookRequestRepo(db, tp),
	}
	if client != nil {
		repos.Cache = data.NewRedisCacheRepo(client)
	}
	return repos
}

// buildMetrics returns a statsd client; a disabled client drops everything.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) *statsd.Client {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.IsEnabled(),
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		client, _ = statsd.NewClient(statsd.Config{Logger: logger})
	}
	return client
}

// buildShopLocker picks the Redis lock when Redis is available.
//
//nolint:ireturn // the lock implementation is chosen at runtime.
func buildShopLocker(repos *serviceRepositories, cfg config.BulkConfig, logger *slog.Logger) (core.ShopLocker, error) {
	if repos.Cache == nil {
		return service.NewLocalShopLocker(), nil
	}
	return service.NewRedisShopLocker(service.RedisShopLockerOptions{
		Cache:  repos.Cache,
		Config: service.ShopLockConfig{Prefix: cfg.LockPrefix, TTL: cfg.LockTTL},
		Logger: logger,
	})
}

func newCatalogFactory(cfg config.ShopifyConfig, hc *http.Client) *shopify.Factory {
	return shopify.NewFactory(shopify.Config{
		APIVersion: cfg.APIVersion,
		Timeout:    cfg.RequestTimeout,
		HTTPClient: hc,
	})
}

func newCaptionBackend(cfg config.VisionatiConfig, hc *http.Client, logger *slog.Logger) *visionati.Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.RequestTimeout}
	}
	return visionati.NewClient(visionati.Config{
		BaseURL:      cfg.BaseURL,
		PollInterval: cfg.PollInterval,
		HTTPClient:   hc,
		Logger:       logger,
	})
}

// NewServices wires repositories, adapters and services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	if deps.DB == nil {
		return ServiceContainer{}, errors.New("database connection is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	metrics := buildMetrics(logger, cfg.Observability.Metrics)
	repos := buildRepositories(deps.DB, deps.RedisClient)
	catalogs := newCatalogFactory(cfg.Shopify, deps.HTTPClient)

	locker, err := buildShopLocker(repos, cfg.Bulk, logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build shop locker: %w", err)
	}

	captions, err := service.NewCaptionService(service.CaptionServiceOptions{
		Settings: repos.Settings,
		Backend:  newCaptionBackend(cfg.Visionati, deps.HTTPClient, logger),
		Config:   service.CaptionConfig{DefaultAPIKey: cfg.Visionati.APIKey},
		Logger:   logger,
		Metrics:  metrics,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build caption service: %w", err)
	}

	writeBack, err := service.NewWriteBackService(service.WriteBackServiceOptions{
		Updates:   repos.Updates,
		Describer: captions,
		Logger:    logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build write-back service: %w", err)
	}

	bulk, err := service.NewBulkUpdateService(service.BulkUpdateServiceOptions{
		Repos: service.BulkUpdateRepos{Jobs: repos.Jobs, Sessions: repos.Sessions},
		Pipeline: service.BulkUpdatePipeline{
			Catalogs:    catalogs,
			WriteBack:   writeBack,
			Locker:      locker,
			Credentials: captions,
		},
		Config:  service.BulkUpdateConfig{PageSize: cfg.Catalog.BulkPageSize},
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build bulk update service: %w", err)
	}

	classification, err := service.NewClassificationService(service.ClassificationServiceOptions{
		Updates:  repos.Updates,
		Sessions: repos.Sessions,
		Catalogs: catalogs,
		PageSize: cfg.Catalog.ListPageSize,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build classification service: %w", err)
	}

	webhooks, err := service.NewWebhookService(service.WebhookServiceOptions{
		Deps: service.WebhookServiceDeps{
			Webhooks:  repos.WebhookGuard,
			Sessions:  repos.Sessions,
			Catalogs:  catalogs,
			Describer: captions,
			Locker:    locker,
		},
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build webhook service: %w", err)
	}

	return ServiceContainer{
		BulkUpdates:    bulk,
		Classification: classification,
		Webhooks:       webhooks,
		Captions:       captions,
		WriteBack:      writeBack,
		Locker:         locker,
		Repos:          repos,
		Metrics:        metrics,
	}, nil
}
