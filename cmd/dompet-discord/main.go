package main

import (
	"context"
	"os"
	"time"
	_ "time/tzdata"

	"dompet/internal/chat"
	"dompet/internal/cli"
	"dompet/internal/discord"
	"dompet/internal/log"
	"dompet/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentDiscord)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.DiscordBotToken == "" {
		logger.Error("DISCORD_BOT_TOKEN is required")
		os.Exit(1)
	}

	loc := cfg.Location()
	store := cli.InitBackend(context.Background(), logger, cfg)

	commands := services.NewCommandService(store.Store, func() time.Time { return time.Now().In(loc) })
	responder := chat.NewResponder(commands, cli.NewCommentator(context.Background(), logger, cfg))

	bot, err := discord.NewBot(cfg.DiscordBotToken, cfg.DiscordChannelID, responder)
	if err != nil {
		logger.Error("Failed to create Discord bot", log.FieldError, err)
		os.Exit(1)
	}
	if err := bot.Start(); err != nil {
		logger.Error("Failed to start Discord bot", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func(context.Context) {
		if err := bot.Stop(); err != nil {
			logger.Error("Discord shutdown error", log.FieldError, err)
		}
		if err := store.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})
	cli.WaitForShutdown(ctx, done)
}
