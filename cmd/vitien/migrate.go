package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hxngan/vitien/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Initialize or update the database schema to the latest version.`,
		RunE:  runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current schema version without applying changes")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	statusOnly, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()

	if !statusOnly {
		store, err := initStorage(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		slog.Info("Database migrated", "version", storage.ExpectedSchemaVersion)
		return nil
	}

	slog.Info("Latest schema version", "version", storage.ExpectedSchemaVersion)
	return nil
}
