// Package mocks provides mock implementations of the core ports for testing
// the captioning services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the interfaces
// in internal/core. The mocks are generated using go:generate directives and provide a fluent
// API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	mockRepo := mocks.NewMockBulkUpdateRepository(ctrl)
//	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mock for CatalogClient interface from internal/core package.
// This creates MockCatalogClient with methods for all CatalogClient interface methods:
// GetProduct, ListProducts, UpdateProductDescription
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=catalog_client_mock.go github.com/image-captioner/captioner/internal/core CatalogClient

// Generate mock for CatalogClientFactory interface from internal/core package.
// This creates MockCatalogClientFactory with methods for all CatalogClientFactory interface methods:
// ForSession
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=catalog_client_factory_mock.go github.com/image-captioner/captioner/internal/core CatalogClientFactory

// Generate mock for CaptionBackend interface from internal/core package.
// This creates MockCaptionBackend with methods for all CaptionBackend interface methods:
// Describe
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=caption_backend_mock.go github.com/image-captioner/captioner/internal/core CaptionBackend

// Generate mock for ImageDescriber interface from internal/core package.
// This creates MockImageDescriber with methods for all ImageDescriber interface methods:
// DescribeImages
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=image_describer_mock.go github.com/image-captioner/captioner/internal/core ImageDescriber

// Generate mock for CaptionSettingsRepository interface from internal/core package.
// This creates MockCaptionSettingsRepository with methods for all CaptionSettingsRepository interface methods:
// Get, Upsert, UpdateCredits
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=caption_settings_repository_mock.go github.com/image-captioner/captioner/internal/core CaptionSettingsRepository

// Generate mock for ShopSessionRepository interface from internal/core package.
// This creates MockShopSessionRepository with methods for all ShopSessionRepository interface methods:
// GetByShop, Upsert, DeleteByShop
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=shop_session_repository_mock.go github.com/image-captioner/captioner/internal/core ShopSessionRepository

// Generate mock for DescriptionUpdateRepository interface from internal/core package.
// This creates MockDescriptionUpdateRepository with methods for all DescriptionUpdateRepository interface methods:
// Create, ProductIDsWithUpdates, LatestByProduct
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=description_update_repository_mock.go github.com/image-captioner/captioner/internal/core DescriptionUpdateRepository

// Generate mock for BulkUpdateRepository interface from internal/core package.
// This creates MockBulkUpdateRepository with methods for all BulkUpdateRepository interface methods:
// Create, Close, GetByID, LatestForShop, CountDescriptionUpdates, Heartbeat, CloseStale
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=bulk_update_repository_mock.go github.com/image-captioner/captioner/internal/core BulkUpdateRepository

// Generate mock for BulkUpdateReaper interface from internal/core package.
// This creates MockBulkUpdateReaper with methods for all BulkUpdateReaper interface methods:
// CloseStale
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=bulk_update_reaper_mock.go github.com/image-captioner/captioner/internal/core BulkUpdateReaper

// Generate mock for WebhookRequestRepository interface from internal/core package.
// This creates MockWebhookRequestRepository with methods for all WebhookRequestRepository interface methods:
// Exists, Record, RecordWithUpdate
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=webhook_request_repository_mock.go github.com/image-captioner/captioner/internal/core WebhookRequestRepository

// Generate mock for ShopLocker interface from internal/core package.
// This creates MockShopLocker with methods for all ShopLocker interface methods:
// TryAcquire, Extend
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=shop_locker_mock.go github.com/image-captioner/captioner/internal/core ShopLocker

// Generate mock for CacheRepository interface from internal/core package.
// This creates MockCacheRepository with methods for all CacheRepository interface methods:
// Get, Delete, SetIfNotExists, DeleteIfValue, ExpireIfValue, Health
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/image-captioner/captioner/internal/core CacheRepository
