package main

import (
	"context"
	"errors"
	"os"
	"time"

	"dompet/internal/cli"
	"dompet/internal/log"
	"dompet/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting dompet-notifier")

	client := cli.NewAMQPClient(logger, cfg)
	if client == nil {
		logger.Error("dompet-notifier needs a reachable AMQP_URL")
		os.Exit(1)
	}
	defer client.Close()

	router := cli.NewRouter(cfg)
	if router.Telegram == nil && router.WhatsApp == nil {
		logger.Warn("No chat channel configured, notifications will be acknowledged and dropped")
	}

	w := worker.NewNotificationWorker(router, cfg.NotificationMaxAge)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	if err := w.Run(ctx, client); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
}
