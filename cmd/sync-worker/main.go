package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expensesync/internal/cli"
	"expensesync/internal/log"
	"expensesync/internal/services"
	"expensesync/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting sync-worker", "remote", cfg.RemoteBackend, "object_store", cfg.ObjectStore)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	app, err := cli.NewApp(ctx, cfg, cli.WithServiceName("expensesync-worker"))
	if err != nil {
		logger.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(app.Sync)

	// Seed and catch up on anything missed while the worker was down.
	logger.Info("Performing startup sync check...")
	startupErr := syncWorker.StartupSyncCheck(ctx)
	if startupErr != nil {
		logger.Error("Failed startup sync check", "error", startupErr)
		// Don't exit - continue with normal operation
	}

	processor := services.NewSyncProcessor(app.Sync, app.Images, services.SyncProcessorConfig{
		Interval:        cfg.SyncInterval,
		CleanupInterval: time.Hour,
		SkipInitialSync: startupErr == nil,
	})

	g, gctx := errgroup.WithContext(ctx)

	if app.AMQP != nil {
		g.Go(func() error {
			return app.AMQP.ConsumeSyncRequests(gctx, syncWorker.HandleSyncRequest)
		})
	} else {
		logger.Info("Skipping AMQP message consumption - no broker configured")
	}

	g.Go(func() error {
		if err := processor.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		return nil
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", "error", err)
	}

	logger.Info("Shutting down worker...")
	shutdownCtx, cancel := cli.ShutdownContext(shutdownTimeout)
	defer cancel()

	if err := processor.Stop(shutdownCtx); err != nil {
		logger.Warn("Sync processor did not stop cleanly", "error", err)
	}
	if err := app.Close(shutdownCtx); err != nil {
		logger.Warn("Cleanup failed", "error", err)
	}
	logger.Info("Worker shutdown complete")
}
