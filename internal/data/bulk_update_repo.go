package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/image-captioner/captioner/internal/core"
	"github.com/image-captioner/captioner/internal/data/pgxutil"
	"github.com/image-captioner/captioner/internal/domain/model"
	"github.com/jackc/pgx/v5"
)

// Advisory lock keys for reaper operations. The two-arg form keeps them out of
// the migration lock's namespace.
const (
	advisoryLockReaperMajor     = 2000
	advisoryLockReaperCloseBulk = 1
)

const bulkUpdateColumns = `
	product_catalog_bulk_update_request_id::text AS product_catalog_bulk_update_request_id,
	shop_id, start_time, end_time, error, heartbeat_at`

// BulkRepoConfig holds optional dependencies for BulkUpdateRepo.
type BulkRepoConfig struct {
	TimeProvider TimeProvider
}

// BulkUpdateRepo persists bulk update jobs and reports their progress.
type BulkUpdateRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewBulkUpdateRepo creates a new BulkUpdateRepo.
func NewBulkUpdateRepo(db *sql.DB, cfg BulkRepoConfig) *BulkUpdateRepo {
	return &BulkUpdateRepo{DB: db, timeProvider: timeProviderOrReal(cfg.TimeProvider)}
}

// Create inserts an open job row.
func (r *BulkUpdateRepo) Create(ctx context.Context, job model.BulkUpdateJob) error {
	if job.ID == "" || job.ShopID == "" {
		return errors.New("bulk update request requires id and shop_id")
	}
	start := job.StartTime
	if start.IsZero() {
		start = r.timeProvider.Now()
	}
	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO shop_bulk_update_requests
			(product_catalog_bulk_update_request_id, shop_id, start_time, heartbeat_at)
		VALUES ($1, $2, $3, $3)
	`, job.ID, job.ShopID, start.UTC()); err != nil {
		return fmt.Errorf("insert bulk update request: %w", err)
	}
	return nil
}

// Close sets end_time and error on an open job. A job that is already closed
// is left untouched and false is returned.
func (r *BulkUpdateRepo) Close(ctx context.Context, params core.CloseBulkUpdateParams) (bool, error) {
	end := params.End
	if end.IsZero() {
		end = r.timeProvider.Now()
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE shop_bulk_update_requests
		SET end_time = $2, error = $3
		WHERE product_catalog_bulk_update_request_id = $1
		  AND end_time IS NULL
	`, params.ID, end.UTC(), params.Failed)
	if err != nil {
		return false, fmt.Errorf("close bulk update request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Heartbeat stamps heartbeat_at on an open job. It returns false when the job
// is closed or missing, which tells the sweep to stop.
func (r *BulkUpdateRepo) Heartbeat(ctx context.Context, id string, at time.Time) (bool, error) {
	if at.IsZero() {
		at = r.timeProvider.Now()
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE shop_bulk_update_requests
		SET heartbeat_at = GREATEST(heartbeat_at, $2)
		WHERE product_catalog_bulk_update_request_id = $1
		  AND end_time IS NULL
	`, id, at.UTC())
	if err != nil {
		return false, fmt.Errorf("heartbeat bulk update request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// GetByID returns a job or ErrBulkUpdateNotFound.
func (r *BulkUpdateRepo) GetByID(ctx context.Context, id string) (*model.BulkUpdateJob, error) {
	return r.getOne(ctx, `
		SELECT `+bulkUpdateColumns+`
		FROM shop_bulk_update_requests
		WHERE product_catalog_bulk_update_request_id = $1
	`, id)
}

// LatestForShop returns the most recently started job for a shop.
func (r *BulkUpdateRepo) LatestForShop(ctx context.Context, shopID string) (*model.BulkUpdateJob, error) {
	return r.getOne(ctx, `
		SELECT `+bulkUpdateColumns+`
		FROM shop_bulk_update_requests
		WHERE shop_id = $1
		ORDER BY start_time DESC
		LIMIT 1
	`, shopID)
}

func (r *BulkUpdateRepo) getOne(ctx context.Context, query string, arg any) (*model.BulkUpdateJob, error) {
	var job model.BulkUpdateJob
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, arg)
		if err != nil {
			return err
		}
		job, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.BulkUpdateJob])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBulkUpdateNotFound
		}
		return nil, fmt.Errorf("get bulk update request: %w", err)
	}
	return &job, nil
}

// CountDescriptionUpdates returns the number of descriptions written by a job so far.
func (r *BulkUpdateRepo) CountDescriptionUpdates(ctx context.Context, id string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM shop_bulk_update_requests_description_updates
		WHERE product_catalog_bulk_update_request_id = $1
	`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bulk update descriptions: %w", err)
	}
	return n, nil
}

// CloseStale marks open jobs whose last heartbeat is older than the cutoff as
// failed. A sweep that is still making progress keeps its job open.
// Concurrent reapers are serialised with a transaction-scoped advisory lock;
// the loser closes nothing.
func (r *BulkUpdateRepo) CloseStale(ctx context.Context, lastSeenBefore time.Time) (int64, error) {
	var closed int64
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			var locked bool
			if err := tx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock($1, $2)",
				advisoryLockReaperMajor, advisoryLockReaperCloseBulk).Scan(&locked); err != nil {
				return fmt.Errorf("acquire advisory lock: %w", err)
			}
			if !locked {
				return nil
			}

			res, err := tx.ExecContext(ctx, `
				UPDATE shop_bulk_update_requests
				SET end_time = $1, error = TRUE
				WHERE end_time IS NULL
				  AND heartbeat_at < $2
			`, r.timeProvider.Now().UTC(), lastSeenBefore.UTC())
			if err != nil {
				return fmt.Errorf("close stale bulk update requests: %w", err)
			}
			closed, err = res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			return nil
		},
	})
	if err != nil {
		return 0, err
	}
	return closed, nil
}
