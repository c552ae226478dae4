package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/tetuya0525/article-ingest-service/config"
	"github.com/tetuya0525/article-ingest-service/internal/infrastructure/store"
	"github.com/tetuya0525/article-ingest-service/utils/logger"
)

func migrateCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the staging tables in PostgreSQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.Init(false)

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if cfg.StorageDriver != config.StorageDriverPostgres {
				return errors.New("migrate requires STORAGE_DRIVER=postgres")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pool, err := store.NewPostgresPool(ctx, cfg.DatabaseURL, store.PoolConfig{MaxConns: 1, MinConns: 1})
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := store.Migrate(ctx, pool); err != nil {
				return err
			}
			slog.InfoContext(ctx, "schema applied", "statements", len(store.SchemaStatements()))
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall migration timeout")
	return cmd
}
