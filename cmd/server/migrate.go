package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/logging"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if cfg.DatabaseURL == "" {
				return errMissingDatabaseURL
			}
			l := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			db, err := config.InitDB(ctx, cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			l.Info("migration_complete", "driver", cfg.DBDriver)
			return nil
		},
	}
}
