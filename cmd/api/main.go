package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lksmaxx/enroll-api/internal/api"
	"github.com/lksmaxx/enroll-api/internal/api/middleware"
	"github.com/lksmaxx/enroll-api/internal/application/factories/infrastructure"
	"github.com/lksmaxx/enroll-api/internal/config"
	"github.com/lksmaxx/enroll-api/internal/infrastructure/postgres"
	"github.com/lksmaxx/enroll-api/internal/usecase"
)

func main() {
	// Initialize structured JSON logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	// Initialize dependencies
	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	if err := postgres.EnsureSchema(ctx, pgPool); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// Repositories
	enrollmentRepo := postgres.NewEnrollmentRepository(pgPool)
	ageGroupRepo := postgres.NewAgeGroupRepository(pgPool)
	txManager := postgres.NewTxManager(pgPool)

	if err := ageGroupRepo.SeedDefaults(ctx, txManager); err != nil {
		logger.Error("failed to seed default age groups", "error", err)
		os.Exit(1)
	}

	// Redis (optional: the API degrades to uncached reads without it)
	redisClient, err := infraFactory.Redis(ctx)
	if err != nil {
		logger.Warn("redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	}

	publisher := infraFactory.QueuePublisher()

	// UseCases
	submitUC := usecase.NewSubmitEnrollment(ageGroupRepo, enrollmentRepo, publisher)
	getUC := usecase.NewGetEnrollment(redisClient, enrollmentRepo)
	ageGroupsUC := usecase.NewAgeGroups(ageGroupRepo)

	auth, err := middleware.NewBasicAuth(cfg.Auth.Realm, cfg.Auth.Users)
	if err != nil {
		logger.Error("failed to load auth users", "error", err)
		os.Exit(1)
	}

	handlers := api.NewHandlers(submitUC, getUC, ageGroupsUC)
	apiHandler := api.NewRouter(handlers, auth, redisClient)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: apiHandler,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("Server exiting")
}
