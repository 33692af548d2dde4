// Copyright (c) 2026 Yomikata. All rights reserved.

/*
Server is the entry point for the Yomikata ingest service.

The process owns the priority scan queue, the periodic scheduler, and the
filesystem watcher that together keep the persisted library/content graph
in sync with the user's filesystem, plus a thin admin HTTP surface to
observe and drive scans. The reading/browsing API (catalog, pages,
authentication) is a separate out-of-scope collaborator.

Usage:

	go run cmd/server/main.go [flags]

The flags/environment variables are:

	ADMIN_ADDR        Address the admin HTTP surface binds (default: :8080)
	ENVIRONMENT       deployment environment (development, production)
	DATABASE_URL      Postgres connection string (required)
	REDIS_URL         Redis connection string (required)
	BANGUMI_API_KEY   optional bearer credential for the metadata catalog

Startup Sequence:

 1. Logger: Initialize structured JSON logging (slog).
 2. Config: Load and validate environment variables.
 3. Storage: Establish connections to Postgres and Redis.
 4. Migration: Run idempotent schema updates.
 5. Wiring: Construct the archive layer, metadata client, persistence
    repositories, scan queue, scheduler, and watcher, then restore
    scheduler/watcher bindings from the persisted library list.
 6. Server: Bind the admin HTTP listener and handle graceful shutdown.

No business logic lives here. This file is strictly for orchestration and wiring.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yomikata/ingest/internal/api"
	"github.com/yomikata/ingest/internal/library"
	"github.com/yomikata/ingest/internal/metadata"
	"github.com/yomikata/ingest/internal/platform/config"
	"github.com/yomikata/ingest/internal/platform/constants"
	"github.com/yomikata/ingest/internal/platform/migration"
	pgstore "github.com/yomikata/ingest/internal/platform/postgres"
	redisstore "github.com/yomikata/ingest/internal/platform/redis"
	"github.com/yomikata/ingest/internal/scanpipeline"
	"github.com/yomikata/ingest/internal/scanqueue"
	"github.com/yomikata/ingest/internal/scheduler"
	"github.com/yomikata/ingest/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application_startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// # 1. Logger
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries for trace correlation
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Yomikata] service_initializing")

	// # 2. Configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("admin_addr", cfg.AdminAddr),
	)

	// Root context for startup. A 30s deadline prevents the app from hanging.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// # 3. PostgreSQL
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// # 4. Redis
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// # 5. Migrations
	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// # 6. Persistence Repositories
	libraryRepo := library.NewLibraryRepository(pool)
	scanPathRepo := library.NewScanPathRepository(pool)
	contentRepo := library.NewContentRepository(pool)
	chapterRepo := library.NewChapterRepository(pool)

	// # 7. Metadata Client
	metadataCache := metadata.NewCache(rdb)
	metadataClient := metadata.New(cfg.BangumiAPIKey, metadataCache, log)

	// # 8. Scan Pipeline
	pipeline := scanpipeline.New(libraryRepo, scanPathRepo, contentRepo, chapterRepo, metadataClient, log)

	// # 9. Scan Queue
	scanQueue := scanqueue.New(pipeline, log)
	scanQueue.Start()
	defer scanQueue.Shutdown()

	// # 10. Scheduler & Watcher
	sched := scheduler.New(scanQueue, log)
	fsWatcher := watcher.New(scanQueue, log)
	defer sched.CancelAll()
	defer fsWatcher.StopAll()

	if err := restoreBindings(startupCtx, libraryRepo, scanPathRepo, sched, fsWatcher, log); err != nil {
		log.Error("restore_bindings_failed", slog.Any("error", err))
	}

	// # 11. Health Wiring
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// # 12. API Assembly
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		ScanQueue: api.NewScanQueueHandler(scanQueue),
	}

	// Create a background context for the whole application lifecycle
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	server := api.NewServer(appCtx, cfg, log, handlers)

	// # 13. Lifecycle Handling
	shutdownErr := make(chan error, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownErr <- fmt.Errorf("http_server_crash: %w", err)
		}
	}()

	log.Info("ingest_server_running", slog.String("admin_addr", cfg.AdminAddr))

	// Block until signal or error
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-shutdownErr:
		return err
	}

	// Start Graceful Shutdown Sequence
	appCancel() // Signal background workers to stop

	log.Info("shutting_down_server", slog.Duration("timeout", cfg.ShutdownGrace))
	if err := server.Shutdown(cfg.ShutdownGrace); err != nil {
		return fmt.Errorf("server_shutdown_failed: %w", err)
	}

	log.Info("graceful_shutdown_complete")
	return nil
}

// restoreBindings reconstructs scheduler and watcher bindings from the
// persisted library list. Called once at process start since neither
// component's state survives a restart (spec §6).
func restoreBindings(
	ctx context.Context,
	libraryRepo library.LibraryRepository,
	scanPathRepo library.ScanPathRepository,
	sched *scheduler.Scheduler,
	fsWatcher *watcher.Watcher,
	log *slog.Logger,
) error {
	libraries, err := libraryRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list libraries: %w", err)
	}

	bindings := make([]scheduler.LibraryBinding, 0, len(libraries))
	for _, lib := range libraries {
		bindings = append(bindings, scheduler.LibraryBinding{
			ID:                  lib.ID,
			ScanIntervalMinutes: lib.ScanIntervalMinutes,
		})

		if lib.WatchMode != library.WatchOn {
			continue
		}

		scanPaths, err := scanPathRepo.ListByLibrary(ctx, lib.ID)
		if err != nil {
			log.Error("restore_watch_list_paths_failed",
				slog.String("library_id", lib.ID), slog.Any("error", err))
			continue
		}

		paths := make([]string, 0, len(scanPaths))
		for _, p := range scanPaths {
			paths = append(paths, p.Path)
		}

		if err := fsWatcher.Start(lib.ID, paths); err != nil {
			log.Error("restore_watch_start_failed",
				slog.String("library_id", lib.ID), slog.Any("error", err))
		}
	}

	sched.Restore(bindings)
	log.Info("bindings_restored", slog.Int("library_count", len(libraries)))
	return nil
}
