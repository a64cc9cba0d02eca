package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"newsbot/internal/config"
	"newsbot/internal/pipeline"
	"newsbot/internal/publisher"
	"newsbot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		log.Error("load sources", "path", cfg.SourcesFile, "error", err)
		os.Exit(1)
	}
	if len(sources) == 0 {
		log.Error("no sources configured", "path", cfg.SourcesFile)
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	pub, err := publisher.New(cfg.TelegramBotToken, cfg.ChannelID, log)
	if err != nil {
		log.Error("create publisher", "error", err)
		os.Exit(1)
	}

	pipe := pipeline.New(cfg, sources, store, pub, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting bot", "sources", len(sources), "daily_limit", cfg.DailyLimit,
		"interval", cfg.CheckInterval, "timezone", cfg.Timezone)

	pipe.Run(ctx)

	log.Info("bot stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
