package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	ErrShopSessionNotFound      = errors.New("shop session not found")
	ErrCaptionSettingsNotFound  = errors.New("caption settings not found")
	ErrBulkUpdateNotFound       = errors.New("bulk update request not found")
	ErrWebhookRequestExists     = errors.New("webhook request already recorded")
	ErrDescriptionUpdateInvalid = errors.New("description update requires id, shop_id and product_id")
)
