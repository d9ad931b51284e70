package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/image-captioner/captioner/internal/data/pgxutil"
	"github.com/image-captioner/captioner/internal/domain/model"
	"github.com/jackc/pgx/v5"
)

// ShopSessionRepo stores offline storefront access tokens.
type ShopSessionRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewShopSessionRepo creates a new ShopSessionRepo.
func NewShopSessionRepo(db *sql.DB) *ShopSessionRepo {
	return &ShopSessionRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// GetByShop returns the session for a shop domain.
func (r *ShopSessionRepo) GetByShop(ctx context.Context, shop string) (*model.ShopSession, error) {
	var out model.ShopSession
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT shop, access_token, scope
			FROM shop_sessions
			WHERE shop = $1
		`, strings.ToLower(strings.TrimSpace(shop)))
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.ShopSession])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShopSessionNotFound
		}
		return nil, fmt.Errorf("get shop session: %w", err)
	}
	return &out, nil
}

// Upsert creates or replaces the session for a shop.
func (r *ShopSessionRepo) Upsert(ctx context.Context, s model.ShopSession) error {
	shop := strings.ToLower(strings.TrimSpace(s.Shop))
	if shop == "" || s.AccessToken == "" {
		return errors.New("shop and access token are required")
	}
	now := r.timeProvider.Now()
	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO shop_sessions (shop, access_token, scope, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (shop) DO UPDATE
		SET access_token = EXCLUDED.access_token,
		    scope = EXCLUDED.scope,
		    updated_at = EXCLUDED.updated_at
	`, shop, s.AccessToken, s.Scope, now); err != nil {
		return fmt.Errorf("upsert shop session: %w", err)
	}
	return nil
}

// DeleteByShop removes a shop's session (shop redaction or uninstall).
func (r *ShopSessionRepo) DeleteByShop(ctx context.Context, shop string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM shop_sessions WHERE shop = $1`,
		strings.ToLower(strings.TrimSpace(shop)))
	if err != nil {
		return false, fmt.Errorf("delete shop session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
