package model

import "time"

// DescriptionUpdate is an append-only audit row recording one successful
// description write-back.
type DescriptionUpdate struct {
	ID             string    `json:"product_description_update_id" db:"product_description_update_id"`
	ProductID      string    `json:"product_id"                    db:"product_id"`
	ShopID         string    `json:"shop_id"                       db:"shop_id"`
	OldDescription string    `json:"old_description"               db:"old_description"`
	NewDescription string    `json:"new_description"               db:"new_description"`
	CreatedAt      time.Time `json:"created_at"                    db:"created_at"`
}

// DescriptionUpdateSource links a new audit row to the job or webhook
// delivery that produced it. At most one of the fields is set.
type DescriptionUpdateSource struct {
	BulkUpdateRequestID string
	WebhookRequestID    string
}
