package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blocniti/blocniti/internal/config"
	"github.com/blocniti/blocniti/internal/report"
	"github.com/blocniti/blocniti/internal/storage"
)

type loader func() (*config.Config, *slog.Logger, error)

func newMigrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			store, err := storage.Open(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date.")
			return nil
		},
	}
}

func newReportCmd(load loader) *cobra.Command {
	var userID, out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a user's repair report PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load()
			if err != nil {
				return err
			}
			store, err := storage.Open(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			issues, err := store.ListRepairIssuesForUser(cmd.Context(), userID)
			if err != nil {
				return fmt.Errorf("list repair issues: %w", err)
			}

			now := time.Now()
			if out == "" {
				out = report.Filename(now)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.Render(f, issues, now); err != nil {
				f.Close()
				os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d repair issues to %s\n", len(issues), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id whose issues are reported")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default BlocNiti_Repair_Report_<date>.pdf)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
