package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/image-captioner/captioner/internal/migrate"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(cmd.Context(), envOptions{})
			if err != nil {
				return err
			}
			defer env.Close()

			if err := migrate.Run(cmd.Context(), env.DB); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and when they were applied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(cmd.Context(), envOptions{})
			if err != nil {
				return err
			}
			defer env.Close()

			versions, err := migrate.Status(cmd.Context(), env.DB)
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}
			return printMigrationStatus(cmd, versions)
		},
	})
	return cmd
}

func printMigrationStatus(cmd *cobra.Command, versions []migrate.Version) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tAPPLIED")
	for _, v := range versions {
		applied := "pending"
		if v.Applied() {
			applied = v.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\n", v.Version, applied)
	}
	return tw.Flush()
}
