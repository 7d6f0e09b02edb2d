package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hasmart/retail-ingest/internal/api"
	"github.com/hasmart/retail-ingest/internal/cache"
	"github.com/hasmart/retail-ingest/internal/config"
	"github.com/hasmart/retail-ingest/internal/ingest"
	"github.com/hasmart/retail-ingest/internal/repository/postgres"
	"github.com/hasmart/retail-ingest/internal/service"
	"github.com/hasmart/retail-ingest/internal/storage"
	"github.com/hasmart/retail-ingest/internal/valuation"
	"github.com/hasmart/retail-ingest/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Ingest.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	store := postgres.NewStore(db)

	reportCache, err := cache.NewReportCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("report cache unavailable, serving uncached")
		reportCache = cache.NewNoopReportCache()
	}
	reportService := service.NewReportService(store, reportCache)

	watcherCtx, stopWatcher := context.WithCancel(context.Background())
	defer stopWatcher()
	startWatcher(watcherCtx, cfg, store, reportService)

	router := api.NewRouter(&api.Services{ReportService: reportService}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	stopWatcher()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// startWatcher wires the drop-box watcher when it is enabled; the server runs
// fine without it.
func startWatcher(ctx context.Context, cfg *config.Config, store *postgres.Store, reports *service.ReportService) {
	if !cfg.Dropbox.Enabled {
		logger.Log.Info().Msg("drop-box watcher disabled")
		return
	}

	objectStore, err := storage.NewMinioClient(cfg.Dropbox)
	if err != nil {
		logger.Log.Error().Err(err).Msg("drop-box storage unavailable, watcher not started")
		return
	}

	coordinator, err := ingest.NewCoordinator(store, valuation.NewEngine(logger.Log), logger.Log, ingest.Options{
		BranchName:      cfg.Ingest.BranchName,
		DefaultPassword: cfg.Ingest.DefaultPassword,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to build ingestion coordinator, watcher not started")
		return
	}

	watcher := ingest.NewWatcher(objectStore, coordinator, cfg.Dropbox, logger.Log)
	watcher.OnIngested = func(ctx context.Context) {
		reports.Invalidate(ctx)
	}

	go func() {
		if err := watcher.Run(ctx); err != nil && err != context.Canceled {
			logger.Log.Error().Err(err).Msg("drop-box watcher stopped")
		}
	}()
}
