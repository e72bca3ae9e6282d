package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/khanburhan/tokritrack/internal/amqp"
	"github.com/khanburhan/tokritrack/internal/backend"
	"github.com/khanburhan/tokritrack/internal/config"
	"github.com/khanburhan/tokritrack/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting tokritrack-worker")

	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize data backend to read wishlist items
	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Failed to build backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}()
	}
	logger.Info("Initialized data backend", "backend", cfg.DataBackend)

	// Initialize Telegram notifier for review reminders (optional)
	var notifier worker.Notifier
	if cfg.TelegramBotToken != "" {
		tg, err := worker.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logger.Error("Failed to initialize Telegram notifier", "error", err)
			os.Exit(1)
		}
		notifier = tg
		logger.Info("Telegram notifier initialized", "chat_id", cfg.TelegramChatID)
	} else {
		logger.Info("Telegram reminders disabled - no TELEGRAM_BOT_TOKEN provided")
	}

	reviewWorker := worker.NewReviewWorker(result.Backend, notifier)

	// Consume scheduled review messages (optional)
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			handler := func(msg *amqp.WishlistReviewMessage) error {
				return reviewWorker.HandleReviewMessage(ctx, msg)
			}
			if err := amqpClient.ConsumeWishlistReviews(ctx, handler); err != nil {
				if err != context.Canceled {
					logger.Error("Message consumption failed", "error", err)
				}
				cancel()
			}
		}()
		logger.Info("Consuming wishlist review messages", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Skipping AMQP message consumption - no AMQP_URL provided")
	}

	// On startup, catch up on items that became review-ready while the
	// worker was down.
	if err := reviewWorker.ScanAndNotify(ctx); err != nil {
		logger.Error("Startup review scan failed", "error", err)
		// Don't exit - the scheduled scans will retry
	}

	// Schedule the daily review scan
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.ReviewScanSchedule, func() {
		if err := reviewWorker.ScanAndNotify(ctx); err != nil {
			logger.Error("Scheduled review scan failed", "error", err)
		}
	})
	if err != nil {
		logger.Error("Failed to schedule review scan", "error", err, "schedule", cfg.ReviewScanSchedule)
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("Review scan scheduled", "schedule", cfg.ReviewScanSchedule)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down worker...")
	cancel()

	// Give in-flight handlers a moment to finish
	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
		logger.Info("Worker shutdown complete")
	case <-time.After(5 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
}
