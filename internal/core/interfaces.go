package core

import (
	"context"
	"time"

	"github.com/image-captioner/captioner/internal/domain/model"
)

// This file contains the ports between the service layer and its adapters.
// Services depend on these interfaces, never on concrete repositories or clients.

// CatalogClient reads and writes products of a single storefront.
type CatalogClient interface {
	ListProducts(ctx context.Context, q model.ProductQuery) (model.ProductConnection, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	UpdateProductDescription(ctx context.Context, id, descriptionHTML string) (*model.Product, error)
}

// CatalogClientFactory builds a CatalogClient for an installed shop.
type CatalogClientFactory interface {
	ForSession(session model.ShopSession) (CatalogClient, error)
}

// CaptionBackend submits a batch of image URLs and blocks until the
// backend reports a terminal state.
type CaptionBackend interface {
	Describe(ctx context.Context, req model.CaptionRequest) (*model.CaptionResult, error)
}

// ImageDescriber turns image URLs into a URL→description map for a shop,
// applying that shop's settings and credit accounting.
type ImageDescriber interface {
	DescribeImages(ctx context.Context, shopID string, urls []string) (map[string]string, error)
}

// CaptionCredentials reports whether a shop can be captioned at all, so
// callers can refuse work before recording it.
type CaptionCredentials interface {
	CheckCredentials(ctx context.Context, shopID string) error
}

// CaptionSettingsRepository is the settings accessor keyed by shop id.
type CaptionSettingsRepository interface {
	// Get returns data.ErrCaptionSettingsNotFound when the shop has no row.
	Get(ctx context.Context, shopID string) (*model.CaptionSettings, error)
	Upsert(ctx context.Context, settings model.CaptionSettings) (*model.CaptionSettings, error)
	// UpdateCredits stores the balance, creating a default row when needed.
	UpdateCredits(ctx context.Context, shopID string, credits int) error
}

// ShopSessionRepository stores offline access tokens per shop.
type ShopSessionRepository interface {
	GetByShop(ctx context.Context, shop string) (*model.ShopSession, error)
	Upsert(ctx context.Context, session model.ShopSession) error
	DeleteByShop(ctx context.Context, shop string) (bool, error)
}

// DescriptionUpdateRepository is the append-only audit log of description write-backs.
type DescriptionUpdateRepository interface {
	// Create inserts the audit row and, when src names a bulk job, its join row
	// in the same transaction.
	Create(ctx context.Context, update model.DescriptionUpdate, src model.DescriptionUpdateSource) error
	// ProductIDsWithUpdates returns the subset of productIDs that have at least one row.
	ProductIDsWithUpdates(ctx context.Context, shopID string, productIDs []string) (map[string]bool, error)
	// LatestByProduct returns the newest row per product id.
	LatestByProduct(ctx context.Context, shopID string, productIDs []string) (map[string]model.DescriptionUpdate, error)
}

// BulkUpdateRepository persists bulk update jobs.
type BulkUpdateRepository interface {
	Create(ctx context.Context, job model.BulkUpdateJob) error
	// Close sets end_time and error on an open job. It returns false when the
	// job was already closed or does not exist.
	Close(ctx context.Context, params CloseBulkUpdateParams) (bool, error)
	GetByID(ctx context.Context, id string) (*model.BulkUpdateJob, error)
	LatestForShop(ctx context.Context, shopID string) (*model.BulkUpdateJob, error)
	CountDescriptionUpdates(ctx context.Context, id string) (int, error)
	// Heartbeat records progress on an open job. It returns false when the
	// job is no longer open.
	Heartbeat(ctx context.Context, id string, at time.Time) (bool, error)
	// CloseStale fails open jobs whose last heartbeat is before the cutoff
	// and returns how many were closed.
	CloseStale(ctx context.Context, lastSeenBefore time.Time) (int64, error)
}

// CloseBulkUpdateParams groups parameters for BulkUpdateRepository.Close.
type CloseBulkUpdateParams struct {
	ID     string
	End    time.Time
	Failed bool
}

// WebhookRequestRepository is the webhook idempotency store.
type WebhookRequestRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	// Record inserts a guard row with no linked update. A duplicate id
	// returns data.ErrWebhookRequestExists.
	Record(ctx context.Context, req model.WebhookRequest) error
	// RecordWithUpdate inserts the guard row, the audit row and the join row
	// in one transaction.
	RecordWithUpdate(ctx context.Context, req model.WebhookRequest, update model.DescriptionUpdate) error
}

// ShopLocker provides per-shop mutual exclusion between pipelines.
type ShopLocker interface {
	// TryAcquire returns acquired=false without error when another holder owns the lock.
	TryAcquire(ctx context.Context, shopID string) (unlock func(context.Context), acquired bool, err error)
	// Extend pushes out the expiry of a lock this holder owns. held=false
	// means the lock expired or was taken over and the holder must stop.
	Extend(ctx context.Context, shopID string) (held bool, err error)
}

// BulkUpdateReaper closes bulk jobs left open by a crashed process.
type BulkUpdateReaper interface {
	CloseStale(ctx context.Context, lastSeenBefore time.Time) (int64, error)
}
