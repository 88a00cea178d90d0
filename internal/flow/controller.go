// Package flow implements the conversation flow controller: a linear,
// per-user sequence of prompts for every top-level operation. Inbound
// text is dispatched by the current session stage; invalid input
// re-issues the same prompt and never advances the stage.
package flow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"waybill-bot/internal/format"
	"waybill-bot/internal/logger"
	"waybill-bot/internal/models"
	"waybill-bot/internal/session"
)

// Button labels. Inbound routing matches these exactly.
const (
	BtnWaybill    = "📝 Путевой лист"
	BtnAddVehicle = "➕ Добавить машину"
	BtnEditRates  = "✏️ Изменить нормы"
	BtnDelVehicle = "🗑 Удалить машину"
	BtnSearch     = "🔍 Поиск машины"
	BtnStats      = "📊 Статистика"
	BtnVehicles   = "🚚 Мои машины"

	BtnCancel = "❌ Отмена"
	BtnSkip   = "⏭ Пропустить"

	BtnReusePrev = "🔁 Как вчера"
	BtnEnterNew  = "🆕 Ввести заново"

	BtnOveruseNone   = "Без перерасхода"
	BtnOveruseLiters = "Литры вручную"
	BtnOveruseIdle   = "Часы простоя"

	BtnFuelAuto   = "🧮 Рассчитать остаток"
	BtnFuelManual = "✍️ Ввести остаток"
	BtnFuelRefuel = "⛽️ Заправка и остаток"

	BtnYes = "✅ Да"
	BtnNo  = "❌ Нет"

	BtnWeek  = "7 дней"
	BtnMonth = "30 дней"
)

const msgUnknown = "Не понял. Выберите действие на клавиатуре или отправьте /help."

// Value bounds for entered quantities.
const (
	maxFuelRate = 100
	maxIdleRate = 50
	maxOdometer = 2000000
	maxLiters   = 2000
	maxHours    = 24
)

// Reply is one outbound message produced by the controller. The
// transport layer decides how to render the keyboard rows.
type Reply struct {
	Text           string
	Keyboard       [][]string
	RemoveKeyboard bool
}

// Gateway is the persistence surface the controller depends on. It is
// satisfied by *repository.Repository.
type Gateway interface {
	AddVehicle(ctx context.Context, number string, fuelRate, idleRate float64) (int64, error)
	UpdateVehicle(ctx context.Context, id int64, fuelRate, idleRate float64) (bool, error)
	GetVehicles(ctx context.Context, search string) ([]models.Vehicle, error)
	GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, id int64) (bool, error)
	GetLastWaybill(ctx context.Context, vehicleID, userID int64) (*models.Waybill, error)
	SaveWaybill(ctx context.Context, w *models.Waybill) (int64, error)
	GetStatistics(ctx context.Context, vehicleID, userID int64, days int) (*models.Statistics, error)
}

// Controller drives all conversation flows over an injected session
// store and persistence gateway.
type Controller struct {
	repo     Gateway
	sessions session.Store
	now      func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the wall clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New builds a Controller.
func New(repo Gateway, sessions session.Store, opts ...Option) *Controller {
	c := &Controller{
		repo:     repo,
		sessions: sessions,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InProgress reports whether the user has an active conversation.
func (c *Controller) InProgress(userID int64) bool {
	return c.sessions.InProgress(userID)
}

// Handle processes one inbound message and returns the replies to send.
// Routing precedence: cancel token, slash commands, active stage,
// button labels, fallback hint.
func (c *Controller) Handle(ctx context.Context, userID int64, text string) []Reply {
	text = strings.TrimSpace(text)

	if text == BtnCancel || text == "/cancel" {
		return c.cancel(userID)
	}

	switch text {
	case "/start":
		c.sessions.Clear(userID)
		return []Reply{c.menu("Привет! Я веду путевые листы: пробег, топливо, простой. Выберите действие:")}
	case "/help":
		return []Reply{c.menu(helpText)}
	case "/stats":
		c.sessions.Clear(userID)
		return c.startStats(ctx, userID)
	}

	if sess := c.sessions.Get(userID); sess != nil && sess.Stage != session.StageIdle {
		replies := c.dispatch(ctx, userID, sess, text)
		logger.FLOW.Debug("stage handled",
			slog.String("event", "flow.stage"),
			slog.Int64("user_id", userID),
			slog.String("stage", string(sess.Stage)),
		)
		return replies
	}

	switch text {
	case BtnWaybill:
		return c.startWaybill(ctx, userID)
	case BtnAddVehicle:
		c.sessions.Begin(userID, session.StageVehicleNumber)
		return []Reply{prompt("Введите госномер машины:")}
	case BtnEditRates:
		return c.startEdit(ctx, userID)
	case BtnDelVehicle:
		return c.startDelete(ctx, userID)
	case BtnSearch:
		c.sessions.Begin(userID, session.StageSearchQuery)
		return []Reply{prompt("Введите часть госномера для поиска:")}
	case BtnStats:
		return c.startStats(ctx, userID)
	case BtnVehicles:
		return c.listVehicles(ctx)
	}

	return []Reply{c.menu(msgUnknown)}
}

const helpText = `Я записываю путевые листы и считаю расход топлива.

📝 Путевой лист — внести поездку за день
➕ Добавить машину — завести машину с нормами расхода
✏️ Изменить нормы — поправить нормы расхода машины
🗑 Удалить машину — удалить машину и все её путевые листы
🔍 Поиск машины — найти машину по номеру
📊 Статистика — итоги за 7 или 30 дней

Любой шаг можно прервать кнопкой «❌ Отмена» или командой /cancel.`

// dispatch routes a message to the handler of the session's stage.
func (c *Controller) dispatch(ctx context.Context, userID int64, sess *session.Session, text string) []Reply {
	switch sess.Stage {
	case session.StageVehicleNumber, session.StageVehicleFuelRate, session.StageVehicleIdleRate:
		return c.handleAddVehicle(ctx, userID, sess, text)
	case session.StageEditSelect, session.StageEditFuelRate, session.StageEditIdleRate:
		return c.handleEdit(ctx, userID, sess, text)
	case session.StageDeleteSelect, session.StageDeleteConfirm:
		return c.handleDelete(ctx, userID, sess, text)
	case session.StageSearchQuery:
		return c.handleSearch(ctx, userID, text)
	case session.StageStatsSelect, session.StageStatsWindow:
		return c.handleStats(ctx, userID, sess, text)
	default:
		return c.handleWaybill(ctx, userID, sess, text)
	}
}

// cancel aborts the active conversation, reporting what was cancelled.
func (c *Controller) cancel(userID int64) []Reply {
	sess := c.sessions.Get(userID)
	c.sessions.Clear(userID)
	if sess == nil || sess.Stage == session.StageIdle {
		return []Reply{c.menu("Сейчас нет активного действия.")}
	}
	logger.FLOW.Info("flow cancelled",
		slog.String("event", "flow.cancel"),
		slog.Int64("user_id", userID),
		slog.String("stage", string(sess.Stage)),
	)
	return []Reply{c.menu("Отменено: " + operationName(sess.Stage) + ".")}
}

func operationName(stage session.Stage) string {
	s := string(stage)
	switch {
	case strings.HasPrefix(s, "vehicle."):
		return "добавление машины"
	case strings.HasPrefix(s, "edit."):
		return "изменение норм"
	case strings.HasPrefix(s, "delete."):
		return "удаление машины"
	case strings.HasPrefix(s, "search."):
		return "поиск"
	case strings.HasPrefix(s, "stats."):
		return "статистика"
	default:
		return "путевой лист"
	}
}

// menu renders the top-level menu keyboard with the given text.
func (c *Controller) menu(text string) Reply {
	return Reply{
		Text: text,
		Keyboard: [][]string{
			{BtnWaybill},
			{BtnAddVehicle, BtnEditRates},
			{BtnDelVehicle, BtnSearch},
			{BtnVehicles, BtnStats},
		},
	}
}

// prompt builds a stage prompt with only the cancel affordance.
func prompt(text string) Reply {
	return Reply{Text: text, Keyboard: [][]string{{BtnCancel}}}
}

// promptWith builds a stage prompt with choice rows plus cancel.
func promptWith(text string, rows ...[]string) Reply {
	rows = append(rows, []string{BtnCancel})
	return Reply{Text: text, Keyboard: rows}
}

// vehicleKeyboard lists plate numbers one per row.
func vehicleKeyboard(vehicles []models.Vehicle) [][]string {
	rows := make([][]string, 0, len(vehicles))
	for _, v := range vehicles {
		rows = append(rows, []string{v.Number})
	}
	return rows
}

// findByNumber resolves an exact (case-insensitive) plate match.
func findByNumber(vehicles []models.Vehicle, text string) *models.Vehicle {
	needle := strings.ToUpper(strings.TrimSpace(text))
	for i := range vehicles {
		if vehicles[i].Number == needle {
			return &vehicles[i]
		}
	}
	return nil
}

func (c *Controller) listVehicles(ctx context.Context) []Reply {
	vehicles, err := c.repo.GetVehicles(ctx, "")
	if err != nil {
		return []Reply{c.menu("Не удалось получить список машин, попробуйте позже.")}
	}
	return []Reply{c.menu(format.VehicleList(vehicles))}
}
