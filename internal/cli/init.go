// Package cli provides common CLI initialization utilities.
// This package consolidates the initialization shared by cmd/dompet,
// cmd/dompet-cron, cmd/dompet-notifier and cmd/dompet-discord.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dompet/internal/amqp"
	"dompet/internal/backend"
	"dompet/internal/commentary"
	"dompet/internal/config"
	"dompet/internal/log"
	"dompet/internal/notify"
	"dompet/internal/services"
)

// SetupLogger initializes structured logging from LOG_LEVEL and LOG_FORMAT.
// Returns the configured logger and sets it as the default logger.
func SetupLogger(component string) *log.Logger {
	logger := log.New(log.ConfigFromEnv(component))
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend opens the configured ledger store.
// Returns the backend or exits the process on failure.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	return res
}

// NewRouter builds the direct chat notifier from whichever channels are
// configured.
func NewRouter(cfg *config.Config) *notify.Router {
	r := &notify.Router{}
	if cfg.TelegramBotToken != "" {
		r.Telegram = notify.NewTelegramClient(cfg.TelegramBotToken, "", nil)
		r.TelegramChats = notify.SplitChatIDs(cfg.TelegramChatIDs)
	}
	if cfg.FonnteToken != "" {
		r.WhatsApp = notify.NewFonnteClient(cfg.FonnteToken, "", nil)
		r.WhatsAppTarget = cfg.WhatsAppNumber
	}
	return r
}

// NewAMQPClient connects to the broker when AMQP_URL is set. A nil client is
// returned when no broker is configured or it cannot be reached.
func NewAMQPClient(logger *log.Logger, cfg *config.Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("Failed to initialize AMQP client", log.FieldError, err)
		return nil
	}
	logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// NewNotifier picks direct delivery or the queue according to NOTIFY_MODE.
// The returned cleanup closes the broker connection, if any.
func NewNotifier(logger *log.Logger, cfg *config.Config) (services.Notifier, func()) {
	if cfg.NotifyMode == config.NotifyQueue {
		if client := NewAMQPClient(logger, cfg); client != nil {
			logger.Info("Notifications go through the queue")
			return &notify.QueueNotifier{Publisher: client}, func() { _ = client.Close() }
		}
		logger.Warn("Queue unavailable, falling back to direct delivery")
	}
	logger.Info("Notifications are delivered directly")
	return NewRouter(cfg), func() {}
}

// NewCommentator enables Gemini commentary when keys are configured. A
// disabled commentator is returned otherwise or on client errors.
func NewCommentator(ctx context.Context, logger *log.Logger, cfg *config.Config) *commentary.Commentator {
	keys := commentary.SplitKeys(cfg.GeminiAPIKeys)
	if len(keys) == 0 {
		logger.Info("Gemini commentary disabled")
		return commentary.New(nil)
	}
	gen, err := commentary.NewGeminiGenerator(ctx, keys, cfg.GeminiModel)
	if err != nil {
		logger.Error("Failed to initialize Gemini, continuing without commentary", log.FieldError, err)
		return commentary.New(nil)
	}
	logger.Info("Gemini commentary enabled", "model", cfg.GeminiModel, "keys", len(keys))
	return commentary.New(gen)
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
