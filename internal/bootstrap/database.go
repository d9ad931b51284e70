package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
	"github.com/redis/go-redis/v9"

	"github.com/image-captioner/captioner/config"
	"github.com/image-captioner/captioner/internal/migrate"
)

const connectTimeout = 5 * time.Second

// DatabaseConfig contains configuration for database connections.
type DatabaseConfig struct {
	DBConfig    config.DBConfig
	RedisConfig config.RedisConfig
	Logger      *slog.Logger
}

func (c DatabaseConfig) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// postgresDSN builds a pgx URL; url.URL escapes special characters in credentials.
func postgresDSN(cfg config.DBConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// ConnectDB opens the PostgreSQL pool and verifies it with a ping.
func ConnectDB(ctx context.Context, cfg DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", postgresDSN(cfg.DBConfig))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBConfig.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DBConfig.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConfig.ConnMaxLifetime)

	if err := pingOrClose(ctx, db.PingContext, db.Close); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.logger().InfoContext(ctx, "database connected",
		"host", cfg.DBConfig.Host,
		"port", cfg.DBConfig.Port,
		"database", cfg.DBConfig.Name,
		"max_open_conns", cfg.DBConfig.MaxOpenConns,
	)
	return db, nil
}

// ConnectRedis connects the shop-lock store. It returns a nil client when
// Redis is disabled, in which case shop locks stay in-process.
//
//nolint:ireturn // direct, sentinel and cluster clients share redis.UniversalClient.
func ConnectRedis(ctx context.Context, cfg DatabaseConfig) (redis.UniversalClient, error) {
	logger := cfg.logger()
	if !cfg.RedisConfig.Enabled {
		logger.WarnContext(ctx, "redis disabled; shop locks are local to this process")
		return nil, nil
	}

	target, err := redisOptions(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}
	client := target.client()

	ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if err := pingOrClose(ctx, ping, client.Close); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.InfoContext(ctx, "redis connected", "mode", string(target.mode), "addr", target.desc)
	return client, nil
}

type redisMode string

const (
	redisModeDirect   redisMode = "direct"
	redisModeSentinel redisMode = "sentinel"
	redisModeCluster  redisMode = "cluster"
)

// redisTarget is a resolved Redis deployment. desc identifies it without credentials.
type redisTarget struct {
	mode redisMode
	opts *redis.UniversalOptions
	desc string
}

//nolint:ireturn // direct, sentinel and cluster clients share redis.UniversalClient.
func (t redisTarget) client() redis.UniversalClient {
	switch t.mode {
	case redisModeCluster:
		return redis.NewClusterClient(t.opts.Cluster())
	case redisModeSentinel:
		return redis.NewFailoverClient(t.opts.Failover())
	default:
		return redis.NewClient(t.opts.Simple())
	}
}

// redisOptions maps the config onto UniversalOptions for the selected mode.
func redisOptions(cfg config.RedisConfig) (redisTarget, error) {
	switch {
	case cfg.UseCluster:
		addrs := nonEmpty(cfg.ClusterNodes)
		opts := &redis.UniversalOptions{Password: cfg.Password}
		if len(addrs) == 0 {
			uri := strings.TrimSpace(cfg.URI)
			if uri == "" {
				return redisTarget{}, errors.New("redis cluster configuration requires at least one address")
			}
			if !isRedisURL(uri) {
				addrs = []string{uri}
			} else {
				parsed, err := redis.ParseURL(uri)
				if err != nil {
					return redisTarget{}, fmt.Errorf("parse redis cluster url: %w", err)
				}
				addrs = []string{parsed.Addr}
				opts.Username = parsed.Username
				if parsed.Password != "" {
					opts.Password = parsed.Password
				}
				opts.TLSConfig = parsed.TLSConfig
			}
		}
		opts.Addrs = addrs
		return redisTarget{redisModeCluster, opts, "cluster:" + strings.Join(addrs, ",")}, nil

	case cfg.UseSentinel:
		nodes := nonEmpty(cfg.SentinelNodes)
		if len(nodes) == 0 {
			return redisTarget{}, errors.New("redis sentinel configuration requires at least one sentinel node")
		}
		opts := &redis.UniversalOptions{
			Addrs:            nodes,
			MasterName:       cfg.SentinelMasterName,
			Password:         cfg.Password,
			SentinelPassword: cfg.SentinelPassword,
			DB:               cfg.DB,
		}
		return redisTarget{redisModeSentinel, opts, "sentinel:" + cfg.SentinelMasterName}, nil

	default:
		uri := strings.TrimSpace(cfg.URI)
		if uri == "" {
			return redisTarget{}, errors.New("redis direct configuration requires a URI")
		}
		if !isRedisURL(uri) {
			opts := &redis.UniversalOptions{Addrs: []string{uri}, Password: cfg.Password, DB: cfg.DB}
			return redisTarget{redisModeDirect, opts, uri}, nil
		}
		parsed, err := redis.ParseURL(uri)
		if err != nil {
			return redisTarget{}, fmt.Errorf("parse redis url: %w", err)
		}
		opts := &redis.UniversalOptions{
			Addrs:     []string{parsed.Addr},
			Username:  parsed.Username,
			Password:  parsed.Password,
			DB:        parsed.DB,
			TLSConfig: parsed.TLSConfig,
		}
		return redisTarget{redisModeDirect, opts, parsed.Addr}, nil
	}
}

// pingOrClose pings under connectTimeout and closes the handle on failure.
func pingOrClose(ctx context.Context, ping func(context.Context) error, closeFn func() error) error {
	pctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	err := ping(pctx)
	if err == nil {
		return nil
	}
	if closeErr := closeFn(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close: %w", closeErr))
	}
	return err
}

func nonEmpty(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isRedisURL(value string) bool {
	return strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://")
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := migrate.Run(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed")
	}
	return nil
}
