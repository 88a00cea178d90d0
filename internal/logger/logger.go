// Package logger configures the global structured logger and exposes
// component-scoped loggers used across the bot.
package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"waybill-bot/internal/config"
)

var (
	initOnce sync.Once

	// L is the base logger. It defaults to slog.Default so packages can
	// log before Init runs (tests never call Init).
	L = slog.Default()

	// DB logs database connection events.
	DB *slog.Logger
	// MIG logs database migration events.
	MIG *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// FLOW logs conversation flow transitions.
	FLOW *slog.Logger
	// REPO logs persistence gateway activity.
	REPO *slog.Logger
)

func init() {
	wireComponents()
}

// Init configures the global structured logger. It may be called only once.
func Init(cfg *config.Config) {
	initOnce.Do(func() {
		handler := buildHandler(cfg)
		L = slog.New(handler)
		slog.SetDefault(L)
		wireComponents()
	})
}

func wireComponents() {
	DB = Component("db")
	MIG = Component("db.migrate")
	TG = Component("tg")
	FLOW = Component("flow")
	REPO = Component("repo")
}

func buildHandler(cfg *config.Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: selectLevel(cfg)}
	if selectFormat(cfg) == "text" {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

func selectLevel(cfg *config.Config) slog.Level {
	if cfg == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func selectFormat(cfg *config.Config) string {
	if cfg == nil {
		return "json"
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Format)) {
	case "kv", "text", "pretty":
		return "text"
	case "json":
		return "json"
	}
	// Prefer human-friendly format when profile indicates debug/dev mode.
	if strings.EqualFold(cfg.Logging.Profile, "debug") || strings.EqualFold(cfg.Logging.Profile, "dev") {
		return "text"
	}
	return "json"
}

// Component constructs a logger scoped to the provided component attribute.
func Component(name string) *slog.Logger {
	if L == nil {
		return slog.Default()
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return L
	}
	return L.With("component", trimmed)
}
