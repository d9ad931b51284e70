package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/image-captioner/captioner/config"
	httpx "github.com/image-captioner/captioner/internal/http"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// healthChecks pings the database and, when configured, Redis.
func healthChecks(db *sql.DB, client redis.UniversalClient) map[string]httpx.HealthCheck {
	checks := map[string]httpx.HealthCheck{}
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	return checks
}

// BuildHTTPHandler assembles the router from the service container.
func BuildHTTPHandler(cfg *HTTPServerConfig) http.Handler {
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	services := httpx.RouterServices{
		Health: healthChecks(cfg.DB, cfg.RedisClient),
		Auth: httpx.ShopAuthConfig{
			APIKey:     appCfg.Shopify.APIKey,
			APISecret:  appCfg.Shopify.APISecret,
			AdminToken: appCfg.HTTP.AdminToken,
		},
		WebhookSecret: appCfg.Shopify.APISecret,
		MaxBodyBytes:  appCfg.HTTP.MaxBodyBytes,
		Logger:        logger,
	}
	if !services.Auth.Enabled() {
		logger.Warn("neither SHOPIFY_API_SECRET nor HTTP_ADMIN_TOKEN is set; API routes will reject every request")
	}
	// Nil pointers must not become non-nil interfaces.
	if cfg.Services.BulkUpdates != nil {
		services.BulkUpdates = cfg.Services.BulkUpdates
	}
	if cfg.Services.Classification != nil {
		services.Products = cfg.Services.Classification
	}
	if cfg.Services.Webhooks != nil {
		if appCfg.Shopify.APISecret == "" {
			logger.Warn("SHOPIFY_API_SECRET is empty; HTTP webhooks will be rejected")
		}
		services.Webhooks = cfg.Services.Webhooks
	}
	return httpx.NewRouter(services)
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig, errCh chan<- error) *http.Server {
	if cfg == nil {
		return nil
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	addr := ":8080"
	if cfg.Config != nil && cfg.Config.HTTP.Addr != "" {
		addr = cfg.Config.HTTP.Addr
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           BuildHTTPHandler(cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Product listings walk whole catalogs and can run long.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		cfg.Logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- err:
			default:
				cfg.Logger.Error("HTTP server failed", "error", err)
			}
		}
	}()

	return server
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context  context.Context
	Server   *http.Server
	Services ServiceContainer
	Logger   *slog.Logger
}

// ShutdownHTTPServer stops accepting requests, then waits for detached bulk
// sweeps until the context expires.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("shutting down HTTP server")

	if err := cfg.Server.Shutdown(cfg.Context); err != nil {
		return err
	}
	if cfg.Services.BulkUpdates != nil {
		if err := cfg.Services.BulkUpdates.Wait(cfg.Context); err != nil {
			logger.Warn("bulk sweeps still running at shutdown; the reaper will close them", "error", err)
		}
	}

	logger.Info("HTTP server stopped")
	return nil
}
