package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/northpoint-auto/dealdesk-backend/internal/config"
	"github.com/northpoint-auto/dealdesk-backend/internal/db"
	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/queue"
	"github.com/northpoint-auto/dealdesk-backend/internal/repository"
	"github.com/northpoint-auto/dealdesk-backend/internal/worker"
)

func main() {
	// Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting DealDesk dispatch worker")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Connect to database
	database, err := db.New(cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	logger.Info("connected to database")

	// Connect to Redis queue
	queueClient, err := queue.NewRedisClient(queue.RedisConfig{
		URL:       cfg.Queue.RedisURL,
		QueueName: cfg.Queue.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer queueClient.Close()

	logger.Info("connected to Redis queue")

	// Initialize repositories
	notificationRepo := repository.NewNotificationRepository(database.DB)
	vendorRepo := repository.NewVendorRepository(database.DB)

	// Initialize the simulated notifier
	notifier := worker.NewSimulatedNotifier()

	// Initialize dispatch processor
	processor := worker.NewDispatchProcessor(
		notificationRepo,
		vendorRepo,
		notifier,
		cfg.Worker.MaxRetryCount,
		logger,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start consuming dispatch jobs
	consumerErrors := make(chan error, 1)
	go func() {
		logger.Info("starting dispatch consumer",
			slog.Int("concurrency", cfg.Worker.Concurrency),
			slog.Int("max_retry_count", cfg.Worker.MaxRetryCount),
		)

		handler := func(ctx context.Context, job *models.DispatchJob) error {
			return processor.Process(ctx, job)
		}

		consumerErrors <- queueClient.Consume(ctx, handler, cfg.Worker.Concurrency)
	}()

	// Wait for interrupt signal or consumer error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-consumerErrors:
		if err != nil && err != context.Canceled {
			logger.Error("consumer error", slog.String("error", err.Error()))
			os.Exit(1)
		}

	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))

		// Cancel context to stop consumer
		cancel()

		// Give consumers time to finish current jobs
		time.Sleep(5 * time.Second)

		logger.Info("worker stopped gracefully")
	}
}
