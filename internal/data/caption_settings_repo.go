package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/image-captioner/captioner/internal/data/pgxutil"
	"github.com/image-captioner/captioner/internal/domain/model"
	"github.com/jackc/pgx/v5"
)

const captionSettingsColumns = `shop_id, backend, role, custom_prompt, credits, api_key`

// CaptionSettingsRepo persists per-shop captioning settings and credit balance.
type CaptionSettingsRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCaptionSettingsRepo creates a new CaptionSettingsRepo.
func NewCaptionSettingsRepo(db *sql.DB) *CaptionSettingsRepo {
	return &CaptionSettingsRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Get returns the settings row for a shop or ErrCaptionSettingsNotFound.
func (r *CaptionSettingsRepo) Get(ctx context.Context, shopID string) (*model.CaptionSettings, error) {
	var out model.CaptionSettings
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+captionSettingsColumns+` FROM shop_caption_settings WHERE shop_id = $1`, shopID)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.CaptionSettings])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCaptionSettingsNotFound
		}
		return nil, fmt.Errorf("get caption settings: %w", err)
	}
	return &out, nil
}

// Upsert writes backend, role, custom prompt and API key. Credits are left untouched.
func (r *CaptionSettingsRepo) Upsert(
	ctx context.Context,
	s model.CaptionSettings,
) (*model.CaptionSettings, error) {
	if s.ShopID == "" {
		return nil, errors.New("shop_id is required")
	}
	backend := s.EffectiveBackend()
	role := s.EffectiveRole()
	if !backend.Valid() {
		return nil, fmt.Errorf("invalid backend %q", backend)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	var out model.CaptionSettings
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO shop_caption_settings (shop_id, backend, role, custom_prompt, api_key, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (shop_id) DO UPDATE
			SET backend = EXCLUDED.backend,
			    role = EXCLUDED.role,
			    custom_prompt = EXCLUDED.custom_prompt,
			    api_key = COALESCE(EXCLUDED.api_key, shop_caption_settings.api_key),
			    updated_at = EXCLUDED.updated_at
			RETURNING `+captionSettingsColumns,
			s.ShopID, string(backend), string(role), s.CustomPrompt, s.APIKey, r.timeProvider.Now(),
		)
		if err != nil {
			return err
		}
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.CaptionSettings])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("upsert caption settings: %w", err)
	}
	return &out, nil
}

// UpdateCredits stores the remaining balance reported by the captioning backend.
// A shop without a settings row gets one with default backend and role.
func (r *CaptionSettingsRepo) UpdateCredits(ctx context.Context, shopID string, credits int) error {
	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO shop_caption_settings (shop_id, backend, role, credits, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (shop_id) DO UPDATE
		SET credits = EXCLUDED.credits,
		    updated_at = EXCLUDED.updated_at
	`, shopID, string(model.DefaultBackend), string(model.DefaultRole), credits, r.timeProvider.Now()); err != nil {
		return fmt.Errorf("update caption credits: %w", err)
	}
	return nil
}
