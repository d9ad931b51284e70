// Command captioner-admin performs operator tasks against the captioner database.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/image-captioner/captioner/config"
	"github.com/image-captioner/captioner/internal/bootstrap"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// adminEnv is the infrastructure one command needs.
type adminEnv struct {
	Config config.AppConfig
	Logger *slog.Logger
	DB     *sql.DB
	Redis  redis.UniversalClient
}

func (e *adminEnv) Close() {
	if e.Redis != nil {
		if err := e.Redis.Close(); err != nil {
			e.Logger.Warn("close redis failed", "error", err)
		}
	}
	if e.DB != nil {
		if err := e.DB.Close(); err != nil {
			e.Logger.Warn("close database failed", "error", err)
		}
	}
}

// envOptions selects which connections openEnv makes.
type envOptions struct {
	WantRedis bool
}

// openEnv is swapped out in tests.
var openEnv = func(ctx context.Context, opts envOptions) (*adminEnv, error) {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return nil, err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	dbCfg := bootstrap.DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}
	db, err := bootstrap.ConnectDB(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	env := &adminEnv{Config: cfg, Logger: logger, DB: db}
	if opts.WantRedis {
		client, err := bootstrap.ConnectRedis(ctx, dbCfg)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		env.Redis = client
	}
	return env, nil
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "captioner-admin",
		Short:         "Operator tools for the image captioner",
		Long:          "Manage schema migrations, shop sessions, captioning settings and bulk jobs.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newSettingsCmd())
	cmd.AddCommand(newCaptionAllCmd())
	cmd.AddCommand(newJobStatusCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "captioner-admin %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
