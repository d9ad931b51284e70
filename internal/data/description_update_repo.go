package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/image-captioner/captioner/internal/data/pgxutil"
	"github.com/image-captioner/captioner/internal/domain/model"
	"github.com/jackc/pgx/v5"
)

const descriptionUpdateColumns = `
	product_description_update_id::text AS product_description_update_id,
	product_id, shop_id, old_description, new_description, created_at`

// DescriptionUpdateRepo is the append-only audit log of description write-backs.
type DescriptionUpdateRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewDescriptionUpdateRepo creates a new DescriptionUpdateRepo.
func NewDescriptionUpdateRepo(db *sql.DB, tp TimeProvider) *DescriptionUpdateRepo {
	return &DescriptionUpdateRepo{DB: db, timeProvider: timeProviderOrReal(tp)}
}

// prepareDescriptionUpdate fills id and created_at when unset and validates the keys.
func prepareDescriptionUpdate(u *model.DescriptionUpdate, tp TimeProvider) error {
	if u.ShopID == "" || u.ProductID == "" {
		return ErrDescriptionUpdateInvalid
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = tp.Now()
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return nil
}

// Create inserts the audit row and, when src names a bulk job, the join row
// linking it to the job. Both rows commit or neither does.
func (r *DescriptionUpdateRepo) Create(
	ctx context.Context,
	update model.DescriptionUpdate,
	src model.DescriptionUpdateSource,
) error {
	if err := prepareDescriptionUpdate(&update, r.timeProvider); err != nil {
		return err
	}
	return pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO shop_product_description_updates
					(product_description_update_id, product_id, shop_id, old_description, new_description, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, update.ID, update.ProductID, update.ShopID, update.OldDescription, update.NewDescription, update.CreatedAt); err != nil {
				return fmt.Errorf("insert description update: %w", err)
			}

			if src.BulkUpdateRequestID != "" {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO shop_bulk_update_requests_description_updates
						(product_description_update_id, product_catalog_bulk_update_request_id, created_at)
					VALUES ($1, $2, $3)
				`, update.ID, src.BulkUpdateRequestID, update.CreatedAt); err != nil {
					return fmt.Errorf("link description update to bulk request: %w", err)
				}
			}
			if src.WebhookRequestID != "" {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO shop_webhook_requests_description_updates
						(product_description_update_id, webhook_request_id, created_at)
					VALUES ($1, $2, $3)
				`, update.ID, src.WebhookRequestID, update.CreatedAt); err != nil {
					return fmt.Errorf("link description update to webhook request: %w", err)
				}
			}
			return nil
		},
	})
}

// ProductIDsWithUpdates returns the subset of productIDs that have at least one audit row.
func (r *DescriptionUpdateRepo) ProductIDsWithUpdates(
	ctx context.Context,
	shopID string,
	productIDs []string,
) (map[string]bool, error) {
	out := make(map[string]bool, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT DISTINCT product_id
			FROM shop_product_description_updates
			WHERE shop_id = $1
			  AND product_id = ANY($2)
		`, shopID, productIDs)
		if err != nil {
			return err
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		for _, id := range ids {
			out[id] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query updated product ids: %w", err)
	}
	return out, nil
}

// LatestByProduct returns the newest audit row per product id. Products with
// no rows are absent from the map.
func (r *DescriptionUpdateRepo) LatestByProduct(
	ctx context.Context,
	shopID string,
	productIDs []string,
) (map[string]model.DescriptionUpdate, error) {
	out := make(map[string]model.DescriptionUpdate, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT DISTINCT ON (product_id) `+descriptionUpdateColumns+`
			FROM shop_product_description_updates
			WHERE shop_id = $1
			  AND product_id = ANY($2)
			ORDER BY product_id, created_at DESC
		`, shopID, productIDs)
		if err != nil {
			return err
		}
		updates, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.DescriptionUpdate])
		if err != nil {
			return err
		}
		for _, u := range updates {
			out[u.ProductID] = u
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query latest description updates: %w", err)
	}
	return out, nil
}
