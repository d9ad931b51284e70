package httpx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/image-captioner/captioner/internal/adapters/shopify"
	"github.com/image-captioner/captioner/internal/domain/model"
)

var errBadSignature = errors.New("webhook signature mismatch")

// WebhookProcessor handles one verified product webhook.
type WebhookProcessor interface {
	HandleProductCreated(ctx context.Context, event model.ProductCreatedEvent) error
}

// WebhookHandlers receives storefront webhooks over HTTP.
type WebhookHandlers struct {
	Svc    WebhookProcessor
	Secret string
	Logger *slog.Logger
}

// Receive verifies the delivery signature and processes it synchronously.
// Any non-2xx response makes the storefront redeliver later.
func (h *WebhookHandlers) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_body", Err: err})
		return
	}
	if !shopify.VerifyWebhookHMAC(h.Secret, body, r.Header.Get(shopify.HeaderHMAC)) {
		h.Logger.WarnContext(r.Context(), "rejected webhook with bad signature",
			"shop_domain", r.Header.Get(shopify.HeaderShopDomain))
		WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "invalid_signature", Err: errBadSignature})
		return
	}

	event, err := shopify.ParseProductWebhook(r.Header.Get, body)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_webhook", Err: err})
		return
	}

	if err := h.Svc.HandleProductCreated(r.Context(), event); err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
