package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"
	_ "time/tzdata"

	"dompet/internal/cli"
	"dompet/internal/log"
	"dompet/internal/services"
	"dompet/internal/worker"
)

func main() {
	once := flag.Bool("once", false, "run the daily job immediately and exit")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentScheduler)
	cfg := cli.LoadAndValidateConfig(logger)

	at, err := worker.ParseClock(cfg.CronTime)
	if err != nil {
		logger.Error("Invalid CRON_TIME", log.FieldError, err)
		os.Exit(1)
	}

	store := cli.InitBackend(context.Background(), logger, cfg)
	notifier, closeNotifier := cli.NewNotifier(logger, cfg)
	cleanup := func() {
		closeNotifier()
		if err := store.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}

	scheduler := worker.NewDailyScheduler(services.NewDailyJob(store.Store, notifier), at, cfg.Location())

	if *once {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		_, err := scheduler.RunOnce(ctx)
		cancel()
		cleanup()
		if err != nil {
			os.Exit(1)
		}
		return
	}

	logger.Info("Starting dompet-cron", "at", cfg.CronTime, "timezone", cfg.Timezone)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) { cleanup() })
	if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Scheduler stopped", log.FieldError, err)
	}
	cli.WaitForShutdown(ctx, done)
}
