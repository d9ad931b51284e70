package model

import "time"

// TopicProductsCreate is the storefront webhook topic that triggers captioning.
const TopicProductsCreate = "products/create"

// WebhookRequest records a handled webhook delivery. Its presence means the
// delivery must not be processed again.
type WebhookRequest struct {
	ID        string    `json:"webhook_request_id" db:"webhook_request_id"`
	CreatedAt time.Time `json:"created_at"         db:"created_at"`
}

// ProductWebhookPayload is the part of a product webhook body the pipeline reads.
type ProductWebhookPayload struct {
	AdminGraphQLAPIID string `json:"admin_graphql_api_id"`
	Title             string `json:"title,omitempty"`
}

// ProductCreatedEvent is an inbound product webhook delivery.
type ProductCreatedEvent struct {
	DeliveryID string
	Topic      string
	ShopDomain string
	Payload    ProductWebhookPayload
}
