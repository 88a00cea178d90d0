// Package telegram wires the conversation flow controller to the
// Telegram transport via telebot long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"waybill-bot/internal/config"
	"waybill-bot/internal/flow"
	"waybill-bot/internal/logger"
)

// Bot runs the Telegram front-end over a flow controller.
type Bot struct {
	bot  *tele.Bot
	ctrl *flow.Controller
}

// New builds the bot, registers middleware and routes.
func New(cfg *config.Config, ctrl *flow.Controller) (*Bot, error) {
	timeoutSec := cfg.Telegram.LongPollTimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = 10
	}

	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &tele.LongPoller{Timeout: time.Duration(timeoutSec) * time.Second},
	}

	start := time.Now()
	bot, err := tele.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	logger.TG.Info("polling mode",
		slog.String("event", "mode"),
		slog.Int("timeout_seconds", timeoutSec),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)

	b := &Bot{bot: bot, ctrl: ctrl}

	bot.Use(RecoverMiddleware, LoggerMiddleware)
	// Commands are not registered individually: every text update,
	// slash commands included, is routed through the controller, which
	// dispatches by active stage first.
	bot.Handle(tele.OnText, b.onText)

	if err := bot.SetCommands([]tele.Command{
		{Text: "/start", Description: "Главное меню"},
		{Text: "/help", Description: "Что умеет бот"},
		{Text: "/stats", Description: "Статистика по машине"},
		{Text: "/cancel", Description: "Отменить текущее действие"},
	}); err != nil {
		logger.TG.Warn("set commands failed",
			slog.String("event", "commands.set"),
			slog.String("err", err.Error()),
		)
	}

	return b, nil
}

// onText routes one inbound message through the flow controller and
// sends every produced reply back to the chat.
func (b *Bot) onText(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	start := time.Now()
	userID := c.Sender().ID

	replies := b.ctrl.Handle(context.Background(), userID, c.Text())

	var sendErr error
	for _, r := range replies {
		if markup := markupFor(r); markup != nil {
			sendErr = errors.Join(sendErr, c.Send(r.Text, markup))
		} else {
			sendErr = errors.Join(sendErr, c.Send(r.Text))
		}
	}

	logger.TG.Info("handler handled",
		slog.String("event", "handler.handled"),
		slog.String("status", logger.Status(sendErr)),
		slog.Int64("user_id", userID),
		slog.Int("messages", len(replies)),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	)
	return sendErr
}

// Run starts polling and blocks until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	runDone := make(chan struct{})
	go func() {
		b.bot.Start()
		close(runDone)
	}()

	select {
	case <-ctx.Done():
		b.bot.Stop()
		<-runDone
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil
		}
		return ctx.Err()
	case <-runDone:
		return nil
	}
}
