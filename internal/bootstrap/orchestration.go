package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/image-captioner/captioner/config"
)

const defaultShutdownTimeout = 15 * time.Second

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger

	// Signals overrides the OS signal channel; tests send on it directly.
	Signals <-chan os.Signal
}

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode  config.ServiceMode
	name  string
	start func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

func launchBackground(deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !deps.enabledServices[descriptor.mode] {
		return nil
	}
	ctx := deps.ctx

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				deps.logger.WarnContext(ctx, "dropping background service error",
					"service", descriptor.name, "error", errMsg)
			}
		}
	}()

	deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	return done
}

func newWebhookConsumerBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeWebhookConsumer,
		name: "webhook consumer",
		start: func(ctx context.Context) error {
			if deps.cfg.Services.Webhooks == nil {
				return errors.New("webhook service is not configured")
			}
			return RunWebhookConsumer(ctx, WebhookConsumerConfig{
				Config:  deps.cfg.Config.WebhookKafka,
				Handler: deps.cfg.Services.Webhooks,
				Logger:  deps.logger,
			})
		},
	}
}

func newReaperBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeReaper,
		name: "reaper",
		start: func(ctx context.Context) error {
			return RunReaper(ctx, ReaperConfig{
				DB:      deps.cfg.DB,
				Logger:  deps.logger,
				Config:  deps.cfg.Config.Reaper,
				Metrics: deps.cfg.Services.Metrics,
			})
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	return []backgroundService{
		newWebhookConsumerBackgroundService(deps),
		newReaperBackgroundService(deps),
	}
}

func startBackgroundServices(deps *serviceStartupDeps) []backgroundServiceHandle {
	services := buildBackgroundServices(deps)
	handles := make([]backgroundServiceHandle, 0, len(services))
	for _, svc := range services {
		done := launchBackground(deps, svc)
		if done == nil {
			continue
		}
		handles = append(handles, backgroundServiceHandle{mode: svc.mode, name: svc.name, done: done})
	}
	return handles
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// It blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := &serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           make(chan error, errorChannelBufferSize(enabledServices)),
	}

	var server *http.Server
	if enabledServices[config.ServiceModeHTTP] {
		server = StartHTTPServer(&HTTPServerConfig{
			Config:      cfg.Config,
			Services:    cfg.Services,
			DB:          cfg.DB,
			RedisClient: cfg.RedisClient,
			Logger:      logger,
		}, deps.errCh)
	}
	backgrounds := startBackgroundServices(deps)

	signals := cfg.Signals
	if signals == nil {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)
		signals = quit
	}

	timeout := cfg.Config.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	stop := shutdownConfig{
		cancel:      cancel,
		timeout:     timeout,
		httpServer:  server,
		services:    cfg.Services,
		logger:      logger,
		backgrounds: backgrounds,
	}

	select {
	case <-signals:
		logger.Info("shutting down services...")
		return gracefulStop(stop)
	case err := <-deps.errCh:
		logger.Error("service error", "error", err)
		if stopErr := gracefulStop(stop); stopErr != nil {
			logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	return errorChannelCapacity(enabled) + 1
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	cancel      context.CancelFunc
	timeout     time.Duration
	httpServer  *http.Server
	services    ServiceContainer
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// gracefulStop drains HTTP and bulk sweeps first, then stops background
// services. Sweeps outlive the service context, so they are waited on with
// a separate deadline.
func gracefulStop(cfg shutdownConfig) error {
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancelShutdown()

	var httpErr error
	if cfg.httpServer != nil {
		httpErr = ShutdownHTTPServer(ShutdownConfig{
			Context:  shutdownCtx,
			Server:   cfg.httpServer,
			Services: cfg.services,
			Logger:   cfg.logger,
		})
	}

	cfg.cancel()
	for _, svc := range cfg.backgrounds {
		waitForService(shutdownCtx, svc, cfg.logger)
	}
	return httpErr
}

// waitForService waits for a service to finish until ctx expires.
func waitForService(ctx context.Context, svc backgroundServiceHandle, logger *slog.Logger) {
	select {
	case <-svc.done:
		logger.Info(svc.name + " stopped")
	case <-ctx.Done():
		logger.Warn("timeout waiting for " + svc.name + " to stop")
	}
}
