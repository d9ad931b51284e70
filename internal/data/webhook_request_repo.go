package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/image-captioner/captioner/internal/data/pgxutil"
	"github.com/image-captioner/captioner/internal/domain/model"
	apperrors "github.com/image-captioner/captioner/internal/errors"
	"github.com/jackc/pgx/v5"
)

// WebhookRequestRepo stores handled webhook deliveries.
type WebhookRequestRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewWebhookRequestRepo creates a new WebhookRequestRepo.
func NewWebhookRequestRepo(db *sql.DB, tp TimeProvider) *WebhookRequestRepo {
	return &WebhookRequestRepo{DB: db, timeProvider: timeProviderOrReal(tp)}
}

// Exists reports whether a delivery id has already been recorded.
func (r *WebhookRequestRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM shop_webhook_requests WHERE webhook_request_id = $1)`, id,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check webhook request: %w", err)
	}
	return exists, nil
}

// Record inserts a guard row with no linked description update.
func (r *WebhookRequestRepo) Record(ctx context.Context, req model.WebhookRequest) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = r.timeProvider.Now()
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO shop_webhook_requests (webhook_request_id, created_at) VALUES ($1, $2)`,
		req.ID, req.CreatedAt.UTC())
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return ErrWebhookRequestExists
		}
		return fmt.Errorf("insert webhook request: %w", err)
	}
	return nil
}

// RecordWithUpdate inserts the audit row, the guard row and the join row in a
// single transaction. The guard row only becomes visible together with the
// update it vouches for.
func (r *WebhookRequestRepo) RecordWithUpdate(
	ctx context.Context,
	req model.WebhookRequest,
	update model.DescriptionUpdate,
) error {
	if err := prepareDescriptionUpdate(&update, r.timeProvider); err != nil {
		return err
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = update.CreatedAt
	}

	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			batch := &pgx.Batch{}
			batch.Queue(`
				INSERT INTO shop_product_description_updates
					(product_description_update_id, product_id, shop_id, old_description, new_description, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, update.ID, update.ProductID, update.ShopID, update.OldDescription, update.NewDescription, update.CreatedAt)
			batch.Queue(
				`INSERT INTO shop_webhook_requests (webhook_request_id, created_at) VALUES ($1, $2)`,
				req.ID, req.CreatedAt.UTC())
			batch.Queue(`
				INSERT INTO shop_webhook_requests_description_updates
					(product_description_update_id, webhook_request_id, created_at)
				VALUES ($1, $2, $3)
			`, update.ID, req.ID, update.CreatedAt)
			return tx.SendBatch(ctx, batch).Close()
		},
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return ErrWebhookRequestExists
		}
		return fmt.Errorf("record webhook request with update: %w", err)
	}
	return nil
}
