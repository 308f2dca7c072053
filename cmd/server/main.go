// Package main initializes and starts the backup administration server,
// setting up configuration, logging, the database connection, repositories,
// services, handlers, and background jobs.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/stocktrack/stockkeeper/internal/config"
	"github.com/stocktrack/stockkeeper/internal/db"
	"github.com/stocktrack/stockkeeper/internal/logger"
	"github.com/stocktrack/stockkeeper/internal/repository"
	"github.com/stocktrack/stockkeeper/internal/server/handler/http"
	"github.com/stocktrack/stockkeeper/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Remove expired backups on a schedule.
	db.StartRetentionCleaner(context.Background(), postgresDB,
		options.DataDir,
		time.Hour, // interval
		zapLogger,
	)

	// Initialize repositories.
	backupRepo := repository.NewPostgresBackupRepository(postgresDB)
	itemRepo := repository.NewPostgresItemRepository(postgresDB)
	auditRepo := repository.NewPostgresAuditRepository(postgresDB)
	configRepo := repository.NewPostgresConfigRepository(postgresDB)
	adminRepo := repository.NewPostgresAdminRepository(postgresDB)

	// Initialize business-logic services.
	backupService, err := service.NewBackupService(
		backupRepo, itemRepo, auditRepo, configRepo, options.DataDir, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot init backup service", zap.Error(err))
	}
	restoreService := service.NewRestoreService(
		backupRepo, itemRepo, adminRepo, backupService, options.DataDir, zapLogger)

	// Run scheduled automatic backups.
	backupService.StartScheduler(context.Background(), time.Minute)

	// Create HTTP handlers for the backup and settings endpoints.
	backupHandler := &http.BackupHandler{
		BackupService:  backupService,
		RestoreService: restoreService,
	}
	settingsHandler := &http.SettingsHandler{}

	// Build the router with middleware and routes.
	router := http.NewRouter(backupHandler, settingsHandler, zapLogger)

	// Create and start the HTTP server.
	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
