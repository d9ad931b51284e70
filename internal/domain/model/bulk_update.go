package model

import (
	"fmt"
	"strings"
	"time"
)

// BulkUpdateJob tracks one run of the catalog captioning sweep.
// A job is open while EndTime is nil.
type BulkUpdateJob struct {
	ID        string     `json:"productCatalogBulkUpdateRequestId" db:"product_catalog_bulk_update_request_id"`
	ShopID    string     `json:"shop_id"                           db:"shop_id"`
	StartTime time.Time  `json:"start_time"                        db:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"                db:"end_time"`
	Error     *bool      `json:"error,omitempty"                   db:"error"`
	// HeartbeatAt is refreshed by the running sweep after every page.
	HeartbeatAt time.Time `json:"heartbeat_at" db:"heartbeat_at"`
}

// InProgress reports whether the job has not been finalized yet.
func (j BulkUpdateJob) InProgress() bool {
	return j.EndTime == nil
}

// Failed reports whether the job closed with an error.
func (j BulkUpdateJob) Failed() bool {
	return j.EndTime != nil && j.Error != nil && *j.Error
}

// BulkUpdateProgress is returned to callers polling a job.
type BulkUpdateProgress struct {
	BulkUpdateJob

	ProductDescriptionUpdateCount int `json:"productDescriptionUpdateCount"`
}

// BulkOperationKind selects the strategy a bulk job runs.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type BulkOperationKind string

const (
	// BulkOperationAll captions every product in the catalog.
	BulkOperationAll BulkOperationKind = "all"
	// BulkOperationProducts captions only the supplied products.
	BulkOperationProducts BulkOperationKind = "products"
	// BulkOperationApprove writes already generated descriptions without captioning.
	BulkOperationApprove BulkOperationKind = "approve"
)

// Valid returns true if the kind is known.
func (k BulkOperationKind) Valid() bool {
	return k == BulkOperationAll || k == BulkOperationProducts || k == BulkOperationApprove
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *BulkOperationKind) UnmarshalText(text []byte) error {
	v := BulkOperationKind(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid bulk operation kind: %q", v)
	}
	*k = v
	return nil
}

// Approval pairs a product with the description to publish.
type Approval struct {
	ProductID   string `json:"id"`
	Description string `json:"aiDescription"`
}

// BulkOperation is the tagged payload for a bulk job.
type BulkOperation struct {
	Kind      BulkOperationKind `json:"kind"`
	Products  []Product         `json:"products,omitempty"`
	Approvals []Approval        `json:"approvals,omitempty"`
}

// Validate checks that the payload matches the kind.
func (op BulkOperation) Validate() error {
	switch op.Kind {
	case BulkOperationAll:
		return nil
	case BulkOperationProducts:
		if len(op.Products) == 0 {
			return fmt.Errorf("kind %q requires at least one product", op.Kind)
		}
		for i, p := range op.Products {
			if strings.TrimSpace(p.ID) == "" {
				return fmt.Errorf("products[%d]: id is required", i)
			}
		}
		return nil
	case BulkOperationApprove:
		if len(op.Approvals) == 0 {
			return fmt.Errorf("kind %q requires at least one approval", op.Kind)
		}
		for i, a := range op.Approvals {
			if strings.TrimSpace(a.ProductID) == "" {
				return fmt.Errorf("approvals[%d]: id is required", i)
			}
			if strings.TrimSpace(a.Description) == "" {
				return fmt.Errorf("approvals[%d]: aiDescription is required", i)
			}
		}
		return nil
	default:
		return fmt.Errorf("invalid bulk operation kind: %q", op.Kind)
	}
}
