package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/image-captioner/captioner/internal/domain/model"
)

// Webhook delivery headers.
const (
	HeaderTopic      = "X-Shopify-Topic"
	HeaderShopDomain = "X-Shopify-Shop-Domain"
	HeaderWebhookID  = "X-Shopify-Webhook-Id"
	HeaderHMAC       = "X-Shopify-Hmac-Sha256"
)

// ErrInvalidWebhook is returned for deliveries that can never be processed.
var ErrInvalidWebhook = errors.New("invalid webhook delivery")

// VerifyWebhookHMAC reports whether signature is the base64 HMAC-SHA256 of
// body under secret.
func VerifyWebhookHMAC(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	got, err := base64.StdEncoding.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// SignWebhook returns the signature Shopify would send for body.
func SignWebhook(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ParseProductWebhook builds an event from delivery headers and the JSON body.
// header looks up a header value by its canonical name.
func ParseProductWebhook(header func(string) string, body []byte) (model.ProductCreatedEvent, error) {
	ev := model.ProductCreatedEvent{
		DeliveryID: strings.TrimSpace(header(HeaderWebhookID)),
		Topic:      strings.TrimSpace(header(HeaderTopic)),
	}

	shop, err := NormalizeShopDomain(header(HeaderShopDomain))
	if err != nil {
		return ev, fmt.Errorf("%w: %w", ErrInvalidWebhook, err)
	}
	ev.ShopDomain = shop

	if err := json.Unmarshal(body, &ev.Payload); err != nil {
		return ev, fmt.Errorf("%w: decode body: %w", ErrInvalidWebhook, err)
	}
	return ev, nil
}
