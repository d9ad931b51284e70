package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/image-captioner/captioner/internal/core"
)

// ErrShopBusy is returned when another pipeline holds the shop's lock.
var ErrShopBusy = errors.New("another captioning pipeline is running for this shop")

const (
	defaultShopLockPrefix = "captioner:shop-lock:"
	defaultShopLockTTL    = 30 * time.Minute
)

// RedisShopLockerOptions groups dependencies for RedisShopLocker.
type RedisShopLockerOptions struct {
	Cache  core.CacheRepository // Required
	Config ShopLockConfig
	Logger *slog.Logger // Optional
}

// ShopLockConfig holds lock key and expiry settings.
type ShopLockConfig struct {
	Prefix string
	TTL    time.Duration
}

// RedisShopLocker implements core.ShopLocker with SET NX PX and a
// token-checked release and extension, so an expired holder cannot touch a
// newer lock.
type RedisShopLocker struct {
	cache  core.CacheRepository
	prefix string
	ttl    time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	tokens map[string][]byte // shop id -> token of locks held by this process
}

var _ core.ShopLocker = (*RedisShopLocker)(nil)

// NewRedisShopLocker constructs a RedisShopLocker.
func NewRedisShopLocker(opts RedisShopLockerOptions) (*RedisShopLocker, error) {
	if opts.Cache == nil {
		return nil, errors.New("CacheRepository is required")
	}
	prefix := opts.Config.Prefix
	if prefix == "" {
		prefix = defaultShopLockPrefix
	}
	ttl := opts.Config.TTL
	if ttl <= 0 {
		ttl = defaultShopLockTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisShopLocker{
		cache:  opts.Cache,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With("component", "shop_lock"),
		tokens: make(map[string][]byte),
	}, nil
}

// TryAcquire implements core.ShopLocker.
func (l *RedisShopLocker) TryAcquire(ctx context.Context, shopID string) (func(context.Context), bool, error) {
	key := l.prefix + shopID
	token := []byte(uuid.NewString())

	ok, err := l.cache.SetIfNotExists(ctx, key, token, l.ttl)
	if err != nil {
		return nil, false, fmt.Errorf("acquire shop lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	l.mu.Lock()
	l.tokens[shopID] = token
	l.mu.Unlock()

	var once sync.Once
	unlock := func(ctx context.Context) {
		once.Do(func() { l.release(ctx, shopID, key, token) })
	}
	return unlock, true, nil
}

// Extend implements core.ShopLocker.
func (l *RedisShopLocker) Extend(ctx context.Context, shopID string) (bool, error) {
	l.mu.Lock()
	token, ok := l.tokens[shopID]
	l.mu.Unlock()
	if !ok {
		return false, nil
	}

	extended, err := l.cache.ExpireIfValue(ctx, l.prefix+shopID, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("extend shop lock: %w", err)
	}
	if !extended {
		l.logger.WarnContext(ctx, "shop lock lost before extension", "shop_id", shopID, "ttl", l.ttl)
	}
	return extended, nil
}

func (l *RedisShopLocker) release(ctx context.Context, shopID, key string, token []byte) {
	l.mu.Lock()
	if bytes.Equal(l.tokens[shopID], token) {
		delete(l.tokens, shopID)
	}
	l.mu.Unlock()

	released, err := l.cache.DeleteIfValue(ctx, key, token)
	switch {
	case err != nil:
		l.logger.WarnContext(ctx, "failed to release shop lock", "shop_id", shopID, "error", err)
	case !released:
		l.logger.WarnContext(ctx, "shop lock expired before release", "shop_id", shopID, "ttl", l.ttl)
	}
}

// LocalShopLocker is an in-process core.ShopLocker used when Redis is disabled.
// It only serializes pipelines within one process.
type LocalShopLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

var _ core.ShopLocker = (*LocalShopLocker)(nil)

// NewLocalShopLocker constructs an empty LocalShopLocker.
func NewLocalShopLocker() *LocalShopLocker {
	return &LocalShopLocker{held: make(map[string]struct{})}
}

// TryAcquire implements core.ShopLocker.
func (l *LocalShopLocker) TryAcquire(_ context.Context, shopID string) (func(context.Context), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[shopID]; busy {
		return nil, false, nil
	}
	l.held[shopID] = struct{}{}

	var once sync.Once
	return func(context.Context) {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, shopID)
			l.mu.Unlock()
		})
	}, true, nil
}

// Extend implements core.ShopLocker. In-process locks never expire.
func (l *LocalShopLocker) Extend(_ context.Context, shopID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, held := l.held[shopID]
	return held, nil
}
