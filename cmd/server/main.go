package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mio/bunpo/internal/api"
	"github.com/mio/bunpo/internal/config"
	"github.com/mio/bunpo/internal/db"
	"github.com/mio/bunpo/internal/importer"
	"github.com/mio/bunpo/internal/jobs"
	"github.com/mio/bunpo/internal/logger"
	"github.com/mio/bunpo/internal/repository/sqlite"
	"github.com/mio/bunpo/internal/services"
	"github.com/mio/bunpo/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Bunpo Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("content_dir=%s", cfg.ContentDir)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("import_worker_count=%d", cfg.ImportWorkerCount)
	log.Debug("import_queue_size=%d", cfg.ImportQueueSize)
	log.Debug("session_item_count=%d", cfg.SessionItemCount)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Repositories
	catalogRepo := sqlite.NewCatalogRepository(database.DB)
	catalogWriter := sqlite.NewCatalogWriter(database.DB)
	progressRepo := sqlite.NewProgressRepository(database.DB)
	mistakeRepo := sqlite.NewMistakeRepository(database.DB)

	// Import pipeline
	importPool := worker.NewPool(cfg.ImportWorkerCount, cfg.ImportQueueSize)
	imp := importer.New(catalogWriter, catalogRepo, cfg.ContentDir)
	queue := jobs.NewWorkerQueue(importPool, imp)

	// Services
	reviewService := services.NewReviewService(catalogRepo, progressRepo)
	mistakeService := services.NewMistakeService(mistakeRepo)
	progressService := services.NewProgressService(catalogRepo, progressRepo)
	assessmentService := services.NewAssessmentService(
		catalogRepo,
		progressRepo,
		reviewService,
		mistakeService,
		progressService,
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)

	srv := &api.Server{
		DB:          database,
		Assessments: assessmentService,
		Reviews:     reviewService,
		Mistakes:    mistakeService,
		Progress:    progressService,
		Queue:       queue,
	}

	ctx, cancel := context.WithCancel(context.Background())
	importPool.Start(ctx)

	// Seed the catalog on first run.
	if err := queue.EnqueueCatalogImport(false); err != nil {
		log.Warn("failed to queue initial catalog import: %v", err)
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping worker pools")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping import pool")
	importPool.Stop()

	log.Info("===========================================")
	log.Info("Bunpo Server Stopped")
	log.Info("===========================================")
}
