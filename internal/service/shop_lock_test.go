package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/image-captioner/captioner/internal/data"
	"github.com/image-captioner/captioner/internal/mocks"
	"github.com/image-captioner/captioner/internal/testutil"
)

func TestLocalShopLocker_ExcludesSameShopOnly(t *testing.T) {
	ctx := context.Background()
	l := NewLocalShopLocker()

	unlock, ok, err := l.TryAcquire(ctx, testShop)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryAcquire(ctx, testShop)
	require.NoError(t, err)
	assert.False(t, ok)

	otherUnlock, ok, err := l.TryAcquire(ctx, "other.myshopify.com")
	require.NoError(t, err)
	assert.True(t, ok)
	otherUnlock(ctx)

	unlock(ctx)
	unlock(ctx) // second release is harmless

	again, ok, err := l.TryAcquire(ctx, testShop)
	require.NoError(t, err)
	assert.True(t, ok)
	again(ctx)
}

func TestLocalShopLocker_OneWinnerUnderContention(t *testing.T) {
	l := NewLocalShopLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, _ := l.TryAcquire(context.Background(), testShop); ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestRedisShopLocker_AcquireAndRelease(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheRepository(ctrl)
	ctx := context.Background()

	var token []byte
	cache.EXPECT().
		SetIfNotExists(ctx, "captioner:shop-lock:"+testShop, gomock.Any(), 30*time.Minute).
		DoAndReturn(func(_ context.Context, _ string, value []byte, _ time.Duration) (bool, error) {
			token = value
			return true, nil
		})

	l, err := NewRedisShopLocker(RedisShopLockerOptions{
		Cache:  cache,
		Config: ShopLockConfig{TTL: 30 * time.Minute},
	})
	require.NoError(t, err)

	unlock, ok, err := l.TryAcquire(ctx, testShop)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, token)

	cache.EXPECT().
		DeleteIfValue(ctx, "captioner:shop-lock:"+testShop, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value []byte) (bool, error) {
			assert.Equal(t, token, value)
			return true, nil
		})
	unlock(ctx)
}

func TestRedisShopLocker_ExtendUsesOwnToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheRepository(ctrl)
	ctx := context.Background()
	key := "captioner:shop-lock:" + testShop

	var token []byte
	cache.EXPECT().SetIfNotExists(ctx, key, gomock.Any(), 30*time.Minute).
		DoAndReturn(func(_ context.Context, _ string, value []byte, _ time.Duration) (bool, error) {
			token = value
			return true, nil
		})

	l, err := NewRedisShopLocker(RedisShopLockerOptions{Cache: cache})
	require.NoError(t, err)

	held, err := l.Extend(ctx, testShop)
	require.NoError(t, err)
	assert.False(t, held, "nothing to extend before acquiring")

	unlock, ok, err := l.TryAcquire(ctx, testShop)
	require.NoError(t, err)
	require.True(t, ok)

	cache.EXPECT().ExpireIfValue(ctx, key, gomock.Any(), 30*time.Minute).
		DoAndReturn(func(_ context.Context, _ string, value []byte, _ time.Duration) (bool, error) {
			assert.Equal(t, token, value)
			return true, nil
		})
	held, err = l.Extend(ctx, testShop)
	require.NoError(t, err)
	assert.True(t, held)

	cache.EXPECT().ExpireIfValue(ctx, key, gomock.Any(), 30*time.Minute).Return(false, nil)
	held, err = l.Extend(ctx, testShop)
	require.NoError(t, err)
	assert.False(t, held, "a lock taken over by another holder is lost")

	cache.EXPECT().ExpireIfValue(ctx, key, gomock.Any(), gomock.Any()).Return(false, errors.New("timeout"))
	_, err = l.Extend(ctx, testShop)
	require.ErrorContains(t, err, "timeout")

	cache.EXPECT().DeleteIfValue(ctx, key, gomock.Any()).Return(true, nil)
	unlock(ctx)
	unlock(ctx)

	held, err = l.Extend(ctx, testShop)
	require.NoError(t, err)
	assert.False(t, held, "released locks are not extended")
}

func TestLocalShopLocker_Extend(t *testing.T) {
	ctx := context.Background()
	l := NewLocalShopLocker()

	held, err := l.Extend(ctx, testShop)
	require.NoError(t, err)
	assert.False(t, held)

	unlock, ok, err := l.TryAcquire(ctx, testShop)
	require.NoError(t, err)
	require.True(t, ok)
	held, err = l.Extend(ctx, testShop)
	require.NoError(t, err)
	assert.True(t, held)

	unlock(ctx)
	held, err = l.Extend(ctx, testShop)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestRedisShopLocker_HeldLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().SetIfNotExists(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

	l, err := NewRedisShopLocker(RedisShopLockerOptions{Cache: cache})
	require.NoError(t, err)

	unlock, ok, err := l.TryAcquire(context.Background(), testShop)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, unlock)
}

func TestRedisShopLocker_CacheError(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheRepository(ctrl)
	cache.EXPECT().SetIfNotExists(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(false, errors.New("connection refused"))

	l, err := NewRedisShopLocker(RedisShopLockerOptions{Cache: cache})
	require.NoError(t, err)

	_, _, err = l.TryAcquire(context.Background(), testShop)
	require.ErrorContains(t, err, "connection refused")
}

func TestRedisShopLocker_WithRedis(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	l, err := NewRedisShopLocker(RedisShopLockerOptions{
		Cache:  data.NewRedisCacheRepo(client),
		Config: ShopLockConfig{Prefix: "test:shop-lock:", TTL: time.Minute},
	})
	require.NoError(t, err)
	ctx := context.Background()

	unlock, ok, err := l.TryAcquire(ctx, testShop)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryAcquire(ctx, testShop)
	require.NoError(t, err)
	assert.False(t, ok)

	held, err := l.Extend(ctx, testShop)
	require.NoError(t, err)
	assert.True(t, held)

	unlock(ctx)
	again, ok, err := l.TryAcquire(ctx, testShop)
	require.NoError(t, err)
	assert.True(t, ok)
	again(ctx)
}
