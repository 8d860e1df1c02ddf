// Package main initializes and starts the fitness-planner snapshot server,
// setting up configuration, logging, database connections, repositories,
// services, handlers and graceful shutdown.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/mehdibadjian/fitness-planner/internal/config"
	"github.com/mehdibadjian/fitness-planner/internal/db"
	"github.com/mehdibadjian/fitness-planner/internal/logger"
	"github.com/mehdibadjian/fitness-planner/internal/middleware"
	"github.com/mehdibadjian/fitness-planner/internal/repository"
	"github.com/mehdibadjian/fitness-planner/internal/server/handler/http"
	"github.com/mehdibadjian/fitness-planner/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(cmp.Or(options.LogLevel, "info")); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Keep 30 days of sync history, checked hourly.
	db.NewSyncLogPruner(postgresDB, 30*24*time.Hour, zapLogger).Start(ctx, time.Hour)

	snapshotRepo := repository.NewPostgresSnapshotRepository(postgresDB)
	snapshotService := service.NewSnapshotService(snapshotRepo)

	snapshotHandler := &http.SnapshotHandler{SnapshotService: snapshotService}
	statsHandler := &http.StatsHandler{StatsService: snapshotService}

	router := http.NewRouter(snapshotHandler, statsHandler, zapLogger,
		middleware.RateLimit(ctx, options.RateLimit, options.RateBurst))

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced shutdown", zap.Error(err))
		return
	}
	zapLogger.Info("server stopped")
}
