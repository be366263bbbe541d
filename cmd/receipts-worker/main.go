package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"despesas/internal/amqp"
	"despesas/internal/cli"
	"despesas/internal/config"
	applog "despesas/internal/log"
	"despesas/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(applog.ComponentWorker, cfg.LogLevel)
	cli.ValidateConfig(logger, cfg)

	logger.Info("Starting receipts-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the receipts worker")
		os.Exit(1)
	}

	fileStore, _ := cli.NewReceiptStore(context.Background(), logger, cfg)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cleanupWorker := worker.NewReceiptWorker(fileStore)

	logger.Info("Consuming receipt cleanup messages", "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeReceiptCleanup(ctx, cleanupWorker.HandleCleanupMessage); err != nil &&
		!errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
