package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"filestore-bot/internal/bot"
	"filestore-bot/internal/config"
	"filestore-bot/internal/health"
	"filestore-bot/internal/repositories"
	"filestore-bot/internal/session"
)

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	store, err := repositories.Connect(cfg.DBURL, cfg.DBPath)
	if err != nil {
		slog.Error("database setup failed", "error", err)
		os.Exit(1)
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		slog.Error("telegram authorization failed", "error", err)
		os.Exit(1)
	}
	slog.Info("authorized", "bot", api.Self.UserName)

	// In-progress batches start empty after every restart.
	sessions := session.NewStore(cfg.SessionTTL)
	slog.Info("batch sessions reset", "ttl", cfg.SessionTTL)

	b := bot.New(api, api.Self.UserName, api.Self.ID, cfg, store, sessions)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := cron.New()
	if _, err := c.AddFunc("@every 1h", func() {
		if n := sessions.Sweep(); n > 0 {
			slog.Info("expired batch sessions dropped", "count", n)
		}
	}); err != nil {
		slog.Error("could not schedule session sweep", "error", err)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("health listener starting", "port", cfg.Port)
		return health.NewServer(cfg.Port, store).Run(ctx)
	})
	g.Go(func() error {
		slog.Info("polling for updates")
		return b.Run(ctx, api)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		slog.Error("bot stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}
