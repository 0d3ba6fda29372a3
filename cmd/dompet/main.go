package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"dompet/internal/chat"
	"dompet/internal/cli"
	apphttp "dompet/internal/http"
	"dompet/internal/log"
	"dompet/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	loc := cfg.Location()
	now := func() time.Time { return time.Now().In(loc) }

	store := cli.InitBackend(context.Background(), logger, cfg)
	commands := services.NewCommandService(store.Store, now)

	notifier, closeNotifier := cli.NewNotifier(logger, cfg)
	daily := services.NewDailyJob(store.Store, notifier)

	// Telegram replies stay plain; WhatsApp replies get commentary when
	// Gemini is configured.
	commentator := cli.NewCommentator(context.Background(), logger, cfg)
	router := cli.NewRouter(cfg)

	opts := apphttp.Options{
		Addr:              ":" + cfg.Port,
		Logger:            logger.WithComponent(log.ComponentHTTP),
		TelegramSecret:    cfg.TelegramWebhookSecret,
		Daily:             daily,
		CronSecret:        cfg.CronSecret,
		Now:               now,
		Ready:             store.Ready,
		RequestsPerMinute: cfg.RateLimitPerMinute,
	}
	if router.Telegram != nil {
		opts.Telegram = router.Telegram
		opts.TelegramResponder = chat.NewResponder(commands, nil)
	}
	if router.WhatsApp != nil {
		opts.WhatsApp = router.WhatsApp
		opts.WhatsAppResponder = chat.NewResponder(commands, commentator)
	}
	srv := apphttp.NewServer(opts)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		reqs, limits := srv.Metrics()
		logger.Info("Server stopped",
			"total_requests", reqs.TotalRequests,
			"failed_requests", reqs.FailedRequests,
			"rate_limited", limits.Rejected)
		closeNotifier()
		if err := store.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting dompet server",
		"addr", srv.Addr,
		"backend", cfg.DataBackend,
		"telegram", opts.Telegram != nil,
		"whatsapp", opts.WhatsApp != nil,
		"commentary", commentator.Enabled(),
		"timezone", loc.String())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
