package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/image-captioner/captioner/internal/adapters/shopify"
	"github.com/image-captioner/captioner/internal/bootstrap"
	"github.com/image-captioner/captioner/internal/domain/model"
)

func newCaptionAllCmd() *cobra.Command {
	var shop string
	cmd := &cobra.Command{
		Use:   "caption-all",
		Short: "Caption every product in a shop's catalog and wait for the job to finish",
		RunE: func(cmd *cobra.Command, _ []string) error {
			domain, err := shopify.NormalizeShopDomain(shop)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			env, err := openEnv(ctx, envOptions{WantRedis: true})
			if err != nil {
				return err
			}
			defer env.Close()

			svcs, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
				Config:      &env.Config,
				DB:          env.DB,
				RedisClient: env.Redis,
				Logger:      env.Logger,
			})
			if err != nil {
				return err
			}
			defer func() { _ = svcs.Metrics.Close() }()

			job, err := svcs.BulkUpdates.Start(ctx, domain, model.BulkOperation{Kind: model.BulkOperationAll})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "started %s for %s\n", job.ID, domain)

			if err := svcs.BulkUpdates.Wait(ctx); err != nil {
				return fmt.Errorf("interrupted; job %s is left for the reaper: %w", job.ID, err)
			}

			progress, err := svcs.BulkUpdates.Progress(ctx, domain, job.ID)
			if err != nil {
				return err
			}
			return printProgress(cmd.OutOrStdout(), progress)
		},
	}
	cmd.Flags().StringVar(&shop, "shop", "", "shop domain (*.myshopify.com)")
	_ = cmd.MarkFlagRequired("shop")
	return cmd
}

func newJobStatusCmd() *cobra.Command {
	var shop, id string
	cmd := &cobra.Command{
		Use:   "job-status",
		Short: "Show a bulk job's progress (latest job when --id is omitted)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			domain, err := shopify.NormalizeShopDomain(shop)
			if err != nil {
				return err
			}
			env, err := openEnv(cmd.Context(), envOptions{})
			if err != nil {
				return err
			}
			defer env.Close()

			svcs, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
				Config: &env.Config,
				DB:     env.DB,
				Logger: env.Logger,
			})
			if err != nil {
				return err
			}
			defer func() { _ = svcs.Metrics.Close() }()

			progress, err := svcs.BulkUpdates.Progress(cmd.Context(), domain, id)
			if err != nil {
				return err
			}
			return printProgress(cmd.OutOrStdout(), progress)
		},
	}
	cmd.Flags().StringVar(&shop, "shop", "", "shop domain (*.myshopify.com)")
	cmd.Flags().StringVar(&id, "id", "", "bulk update request id")
	_ = cmd.MarkFlagRequired("shop")
	return cmd
}

func jobState(j model.BulkUpdateJob) string {
	switch {
	case j.InProgress():
		return "running"
	case j.Failed():
		return "failed"
	default:
		return "done"
	}
}

func printProgress(w io.Writer, p *model.BulkUpdateProgress) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", p.ID)
	fmt.Fprintf(tw, "SHOP\t%s\n", p.ShopID)
	fmt.Fprintf(tw, "STATE\t%s\n", jobState(p.BulkUpdateJob))
	fmt.Fprintf(tw, "STARTED\t%s\n", p.StartTime.UTC().Format(time.RFC3339))
	if p.EndTime != nil {
		fmt.Fprintf(tw, "ENDED\t%s\n", p.EndTime.UTC().Format(time.RFC3339))
	}
	if p.InProgress() && !p.HeartbeatAt.IsZero() {
		fmt.Fprintf(tw, "HEARTBEAT\t%s\n", p.HeartbeatAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(tw, "UPDATED\t%d\n", p.ProductDescriptionUpdateCount)
	return tw.Flush()
}
