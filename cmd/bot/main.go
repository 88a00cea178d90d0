package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"waybill-bot/internal/config"
	"waybill-bot/internal/database"
	"waybill-bot/internal/flow"
	"waybill-bot/internal/logger"
	"waybill-bot/internal/repository"
	"waybill-bot/internal/session"
	"waybill-bot/internal/telegram"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		// logger is not configured yet
		log.Fatalf("config: %v", err)
	}

	logger.Init(cfg)
	logger.L.Info("startup", slog.String("component", "app"), slog.String("event", "startup"))

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.L.Error("database initialization failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := database.RunMigrations(cfg.Database); err != nil {
		logger.L.Error("migrations failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	repo := repository.New(db)
	sessions := session.NewMemoryStore()
	ctrl := flow.New(repo, sessions)

	bot, err := telegram.New(cfg, ctrl)
	if err != nil {
		logger.L.Error("bot initialization failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.L.Info("app ready", slog.String("component", "app"), slog.String("event", "ready"))
	if err := bot.Run(ctx); err != nil {
		logger.L.Error("bot stopped", slog.String("err", err.Error()))
		os.Exit(1)
	}
	logger.L.Info("shutting down", slog.String("component", "app"), slog.String("event", "shutdown"))
}
