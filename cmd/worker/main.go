package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lksmaxx/enroll-api/internal/application/factories/infrastructure"
	"github.com/lksmaxx/enroll-api/internal/config"
	"github.com/lksmaxx/enroll-api/internal/consumer"
	"github.com/lksmaxx/enroll-api/internal/infrastructure/postgres"
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

	// Metrics Server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info("Worker metrics listening", "port", cfg.Worker.MetricsPort)
		http.ListenAndServe(":"+cfg.Worker.MetricsPort, mux)
	}()

	// Infrastructure: datastore first, broker second. Either failing is
	// fatal; the process exits instead of consuming blind.
	infraFactory := infrastructure.NewFactory(cfg)
	defer infraFactory.Close()

	pgPool, err := infraFactory.Postgres(ctx)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	if err := postgres.EnsureSchema(ctx, pgPool); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	enrollmentRepo := postgres.NewEnrollmentRepository(pgPool)

	queueConsumer, err := infraFactory.QueueConsumer(ctx)
	if err != nil {
		logger.Error("failed to open queue consumer", "error", err)
		os.Exit(1)
	}
	// Closed before the factory closes the pool: reverse acquisition order.
	defer queueConsumer.Close()

	proc := consumer.NewProcessor(enrollmentRepo, cfg.Worker.ProcessingFloor)
	runner := consumer.NewRunner(queueConsumer, proc)

	logger.Info("Enrollment worker started", "topic", cfg.Kafka.Topic, "group_id", cfg.Kafka.GroupID)

	if err := runner.Run(ctx); err != nil {
		logger.Error("worker stopped with error", "error", err)
	}

	logger.Info("worker exited")
}
