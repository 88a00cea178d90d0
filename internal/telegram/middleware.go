package telegram

import (
	"log/slog"
	"runtime/debug"

	tele "gopkg.in/telebot.v4"

	"waybill-bot/internal/logger"
)

// RecoverMiddleware turns handler panics into logged errors so one bad
// update cannot take the bot down.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				logger.TG.Error("handler panic",
					slog.String("event", "panic"),
					slog.Any("panic", r),
					slog.String("stack", logger.SanitizeLimit(string(debug.Stack()), 2048)),
				)
			}
		}()
		return next(c)
	}
}

// LoggerMiddleware logs a single receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		attrs := []any{
			slog.String("event", "update.received"),
			slog.Int("update_id", upd.ID),
		}
		if user := c.Sender(); user != nil {
			attrs = append(attrs, slog.Int64("user_id", user.ID))
			if user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
		}
		if chat := c.Chat(); chat != nil {
			attrs = append(attrs, slog.Int64("chat_id", chat.ID))
		}
		if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		}
		logger.TG.Debug("update received", attrs...)
		return next(c)
	}
}
