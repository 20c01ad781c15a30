package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate/config"
	"github.com/sagarc03/bucketgate/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and validate the objects table",
	Long: `Create the objects table of the sqlite or postgres backend if it does
not exist yet, then validate its schema. Safe to run repeatedly.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	if !cfg.Storage.IsDatabase() {
		return fmt.Errorf("migrate: %w: %s has no schema", errUnsupportedBackend, cfg.Storage.Backend)
	}

	store, err := database.Open(ctx, cfg.Storage.DatabaseConfig(), true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	slog.Info("database migration complete", "type", cfg.Storage.Backend, "table", store.Table())
	return nil
}
