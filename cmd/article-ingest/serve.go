package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tetuya0525/article-ingest-service/config"
	"github.com/tetuya0525/article-ingest-service/utils/logger"
	"github.com/tetuya0525/article-ingest-service/utils/otel"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the ingest HTTP server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Initialize OpenTelemetry
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	// Initialize structured logger
	logger.Init(otelCfg.Enabled)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	slog.InfoContext(ctx, "configuration loaded",
		"port", cfg.Port,
		"storage_driver", cfg.StorageDriver,
		"audience", cfg.AuthAudience,
		"events_enabled", cfg.RedisURL != "",
		"otel_enabled", otelCfg.Enabled)

	application, err := newApp(ctx, cfg, otelCfg)
	if err != nil {
		return err
	}

	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting article-ingest server", "address", address)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := application.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		serverErr := application.echo.Shutdown(shutdownCtx)
		return errors.Join(serverErr, application.close(shutdownCtx))
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("server exited properly")
	return nil
}
