package httpx

import (
	"log/slog"
	"net/http"
)

const defaultMaxBodyBytes = 4 << 20

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	BulkUpdates BulkUpdater
	Products    ProductLister
	Webhooks    WebhookProcessor
	Health      map[string]HealthCheck

	// Auth guards every /api/shops/{shop} route.
	Auth ShopAuthConfig
	// WebhookSecret is the app secret that signs storefront webhooks.
	WebhookSecret string
	MaxBodyBytes  int64
	Logger        *slog.Logger // optional
}

// NewRouter creates and configures the HTTP router with its middleware.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	requireShop := RequireShopAuth(services.Auth)
	shopRoute := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, requireShop(h))
	}

	if services.BulkUpdates != nil {
		bulk := &BulkUpdateHandlers{Svc: services.BulkUpdates, Logger: logger}
		shopRoute("POST /api/shops/{shop}/bulk-updates", bulk.Start)
		shopRoute("GET /api/shops/{shop}/bulk-updates/latest", bulk.Latest)
		shopRoute("GET /api/shops/{shop}/bulk-updates/{id}", bulk.Get)
	}
	if services.Products != nil {
		products := &ProductHandlers{Svc: services.Products, Logger: logger}
		shopRoute("GET /api/shops/{shop}/products", products.List)
	}
	if services.Webhooks != nil {
		webhooks := &WebhookHandlers{Svc: services.Webhooks, Secret: services.WebhookSecret, Logger: logger}
		mux.HandleFunc("POST /webhooks/shopify", webhooks.Receive)
	}

	health := &HealthHandlers{Checks: services.Health}
	mux.HandleFunc("GET /healthz", health.Health)
	mux.HandleFunc("HEAD /healthz", health.Health)

	maxBody := services.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return Chain(mux, Recover(logger), Logging(logger), MaxBytes(maxBody))
}
