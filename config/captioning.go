package config

import (
	"strings"
	"time"
)

// VisionatiConfig configures the captioning backend client.
type VisionatiConfig struct {
	BaseURL string `env:"BASE_URL" envDefault:"https://api.visionati.com"`
	// APIKey is used for shops that have no key of their own.
	APIKey       string        `env:"API_KEY"`
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"1s"`
	// RequestTimeout bounds each submit or poll request, not the whole batch.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to captioning configuration values.
func (v *VisionatiConfig) Sanitize() {
	v.BaseURL = strings.TrimRight(strings.TrimSpace(v.BaseURL), "/")
	v.APIKey = strings.TrimSpace(v.APIKey)
	if v.PollInterval < 100*time.Millisecond {
		v.PollInterval = 100 * time.Millisecond
	}
	if v.RequestTimeout < time.Second {
		v.RequestTimeout = time.Second
	}
}

// ShopifyConfig configures the storefront Admin API client and webhook verification.
type ShopifyConfig struct {
	APIVersion string `env:"API_VERSION" envDefault:"2024-10"`
	// APIKey is the app's client id, the audience of admin session tokens.
	APIKey string `env:"API_KEY"`
	// APISecret signs inbound webhooks (X-Shopify-Hmac-Sha256) and admin
	// session tokens.
	APISecret      string        `env:"API_SECRET"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to storefront configuration values.
func (s *ShopifyConfig) Sanitize() {
	s.APIVersion = strings.TrimSpace(s.APIVersion)
	if s.APIVersion == "" {
		s.APIVersion = "2024-10"
	}
	s.APIKey = strings.TrimSpace(s.APIKey)
	s.APISecret = strings.TrimSpace(s.APISecret)
	if s.RequestTimeout < time.Second {
		s.RequestTimeout = time.Second
	}
}

// maxCatalogPageSize is the storefront's per-request node limit.
const maxCatalogPageSize = 250

// CatalogConfig sets the page sizes used when walking the catalog.
type CatalogConfig struct {
	BulkPageSize int `env:"BULK_PAGE_SIZE" envDefault:"25"`
	ListPageSize int `env:"LIST_PAGE_SIZE" envDefault:"10"`
}

// Sanitize clamps page sizes to [1, 250].
func (c *CatalogConfig) Sanitize() {
	c.BulkPageSize = clamp(c.BulkPageSize, 1, maxCatalogPageSize)
	c.ListPageSize = clamp(c.ListPageSize, 1, maxCatalogPageSize)
}

// BulkConfig configures bulk jobs and the per-shop lock they share with webhooks.
type BulkConfig struct {
	// LockTTL bounds how long a crashed holder can block a shop. A running
	// sweep extends its lock after every page.
	LockTTL time.Duration `env:"LOCK_TTL" envDefault:"30m"`
	// LockPrefix namespaces lock keys in Redis.
	LockPrefix string `env:"LOCK_PREFIX" envDefault:"captioner:shop-lock:"`
}

// Sanitize applies guardrails to bulk job configuration values.
func (b *BulkConfig) Sanitize() {
	if b.LockTTL < time.Minute {
		b.LockTTL = time.Minute
	}
	if strings.TrimSpace(b.LockPrefix) == "" {
		b.LockPrefix = "captioner:shop-lock:"
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
