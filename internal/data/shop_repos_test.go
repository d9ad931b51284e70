package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/image-captioner/captioner/internal/domain/model"
	"github.com/image-captioner/captioner/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopSessionRepo_UpsertGetDelete(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewShopSessionRepo(db)

		_, err := repo.GetByShop(ctx, "demo.myshopify.com")
		require.ErrorIs(t, err, ErrShopSessionNotFound)

		require.NoError(t, repo.Upsert(ctx, model.ShopSession{
			Shop: "Demo.myshopify.com", AccessToken: "shpat_1", Scope: "read_products",
		}))
		require.NoError(t, repo.Upsert(ctx, model.ShopSession{
			Shop: "demo.myshopify.com", AccessToken: "shpat_2", Scope: "read_products,write_products",
		}))

		got, err := repo.GetByShop(ctx, "demo.myshopify.com")
		require.NoError(t, err)
		assert.Equal(t, "shpat_2", got.AccessToken)
		assert.Equal(t, "read_products,write_products", got.Scope)

		deleted, err := repo.DeleteByShop(ctx, "demo.myshopify.com")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.DeleteByShop(ctx, "demo.myshopify.com")
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestShopSessionRepo_UpsertValidation(t *testing.T) {
	repo := NewShopSessionRepo(nil)
	require.Error(t, repo.Upsert(context.Background(), model.ShopSession{Shop: "x.myshopify.com"}))
	require.Error(t, repo.Upsert(context.Background(), model.ShopSession{AccessToken: "t"}))
}

func TestCaptionSettingsRepo(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCaptionSettingsRepo(db)

		_, err := repo.Get(ctx, "shop-1")
		require.ErrorIs(t, err, ErrCaptionSettingsNotFound)

		t.Run("credits on a missing row creates defaults", func(t *testing.T) {
			require.NoError(t, repo.UpdateCredits(ctx, "shop-1", 42))

			got, err := repo.Get(ctx, "shop-1")
			require.NoError(t, err)
			assert.Equal(t, model.DefaultBackend, got.Backend)
			assert.Equal(t, model.DefaultRole, got.Role)
			require.NotNil(t, got.Credits)
			assert.Equal(t, 42, *got.Credits)
		})

		t.Run("upsert keeps credits and api key", func(t *testing.T) {
			_, err := repo.Upsert(ctx, model.CaptionSettings{
				ShopID: "shop-1", Backend: model.BackendClaude, Role: model.RoleRealtor,
				CustomPrompt: testutil.StringPtr("Describe the room."),
				APIKey:       testutil.StringPtr("vk-1"),
			})
			require.NoError(t, err)

			saved, err := repo.Upsert(ctx, model.CaptionSettings{
				ShopID: "shop-1", Backend: model.BackendOpenAI, Role: model.RoleTweet,
			})
			require.NoError(t, err)
			assert.Equal(t, model.BackendOpenAI, saved.Backend)
			assert.Equal(t, model.RoleTweet, saved.Role)
			assert.Nil(t, saved.CustomPrompt)
			require.NotNil(t, saved.Credits)
			assert.Equal(t, 42, *saved.Credits)
			require.NotNil(t, saved.APIKey)
			assert.Equal(t, "vk-1", *saved.APIKey)
		})

		t.Run("credits overwrite", func(t *testing.T) {
			require.NoError(t, repo.UpdateCredits(ctx, "shop-1", 7))
			got, err := repo.Get(ctx, "shop-1")
			require.NoError(t, err)
			assert.Equal(t, 7, *got.Credits)
			assert.Equal(t, model.BackendOpenAI, got.Backend)
		})
	})
}

func TestCaptionSettingsRepo_UpsertRejectsUnknownValues(t *testing.T) {
	repo := NewCaptionSettingsRepo(nil)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, model.CaptionSettings{})
	require.Error(t, err)
	_, err = repo.Upsert(ctx, model.CaptionSettings{ShopID: "s", Backend: "dalle"})
	require.Error(t, err)
	_, err = repo.Upsert(ctx, model.CaptionSettings{ShopID: "s", Role: "poet"})
	require.Error(t, err)
}
