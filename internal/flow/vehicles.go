package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"waybill-bot/internal/format"
	"waybill-bot/internal/logger"
	"waybill-bot/internal/repository"
	"waybill-bot/internal/session"
	"waybill-bot/internal/validate"
)

const msgSaveFailed = "Не удалось сохранить, попробуйте позже."

// parsePositive parses a strictly positive bounded decimal.
func parsePositive(text string, max float64) (float64, bool) {
	v, err := validate.ParseNumber(text, validate.NoBound, max)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// parseNonNegative parses a bounded decimal allowing zero.
func parseNonNegative(text string, max float64) (float64, bool) {
	v, err := validate.ParseNumber(text, 0, max)
	if err != nil {
		return 0, false
	}
	return v, true
}

// --- add vehicle ---

func (c *Controller) handleAddVehicle(ctx context.Context, userID int64, sess *session.Session, text string) []Reply {
	switch sess.Stage {
	case session.StageVehicleNumber:
		number := repository.NormalizeNumber(text)
		if len([]rune(number)) < 3 || len([]rune(number)) > 16 {
			return []Reply{prompt("Госномер должен быть от 3 до 16 символов. Введите госномер:")}
		}
		sess.Veh = &session.VehicleDraft{Number: number}
		sess.Stage = session.StageVehicleFuelRate
		return []Reply{prompt("Норма расхода, л/100км (например 12 или 12,5):")}

	case session.StageVehicleFuelRate:
		v, ok := parsePositive(text, maxFuelRate)
		if !ok {
			return []Reply{prompt(fmt.Sprintf("Нужно число больше 0 и не больше %d. Норма расхода, л/100км:", maxFuelRate))}
		}
		sess.Veh.FuelRate = &v
		sess.Stage = session.StageVehicleIdleRate
		return []Reply{prompt("Расход на час простоя, л/ч (например 2):")}

	default: // StageVehicleIdleRate
		v, ok := parsePositive(text, maxIdleRate)
		if !ok {
			return []Reply{prompt(fmt.Sprintf("Нужно число больше 0 и не больше %d. Расход на час простоя, л/ч:", maxIdleRate))}
		}
		draft := sess.Veh
		c.sessions.Clear(userID)

		id, err := c.repo.AddVehicle(ctx, draft.Number, *draft.FuelRate, v)
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return []Reply{c.menu("Машина с номером " + draft.Number + " уже есть.")}
		}
		if err != nil {
			return []Reply{c.menu(msgSaveFailed)}
		}
		logger.FLOW.Info("vehicle flow finished",
			slog.String("event", "flow.vehicle.add"),
			slog.Int64("user_id", userID),
			slog.Int64("vehicle_id", id),
		)
		return []Reply{c.menu("Машина " + draft.Number + " добавлена ✅")}
	}
}

// --- edit rates ---

func (c *Controller) startEdit(ctx context.Context, userID int64) []Reply {
	vehicles, err := c.repo.GetVehicles(ctx, "")
	if err != nil {
		return []Reply{c.menu(msgSaveFailed)}
	}
	if len(vehicles) == 0 {
		return []Reply{c.menu("Машин пока нет — нечего изменять.")}
	}
	c.sessions.Begin(userID, session.StageEditSelect)
	return []Reply{promptWith("Какой машине изменить нормы?", vehicleKeyboard(vehicles)...)}
}

func (c *Controller) handleEdit(ctx context.Context, userID int64, sess *session.Session, text string) []Reply {
	switch sess.Stage {
	case session.StageEditSelect:
		vehicles, err := c.repo.GetVehicles(ctx, "")
		if err != nil {
			c.sessions.Clear(userID)
			return []Reply{c.menu(msgSaveFailed)}
		}
		v := findByNumber(vehicles, text)
		if v == nil {
			return []Reply{promptWith("Такой машины нет. Выберите из списка:", vehicleKeyboard(vehicles)...)}
		}
		sess.Vehicle = v
		sess.Veh = &session.VehicleDraft{Number: v.Number}
		sess.Stage = session.StageEditFuelRate
		return []Reply{prompt(fmt.Sprintf("Текущая норма %s л/100км. Новая норма расхода, л/100км:", format.Liters(v.FuelRate)))}

	case session.StageEditFuelRate:
		v, ok := parsePositive(text, maxFuelRate)
		if !ok {
			return []Reply{prompt(fmt.Sprintf("Нужно число больше 0 и не больше %d. Новая норма расхода, л/100км:", maxFuelRate))}
		}
		sess.Veh.FuelRate = &v
		sess.Stage = session.StageEditIdleRate
		return []Reply{prompt(fmt.Sprintf("Текущий расход на простой %s л/ч. Новый расход, л/ч:", format.Liters(sess.Vehicle.IdleRate)))}

	default: // StageEditIdleRate
		v, ok := parsePositive(text, maxIdleRate)
		if !ok {
			return []Reply{prompt(fmt.Sprintf("Нужно число больше 0 и не больше %d. Новый расход, л/ч:", maxIdleRate))}
		}
		vehicle := sess.Vehicle
		fuelRate := *sess.Veh.FuelRate
		c.sessions.Clear(userID)

		ok, err := c.repo.UpdateVehicle(ctx, vehicle.ID, fuelRate, v)
		if err != nil || !ok {
			return []Reply{c.menu(msgSaveFailed)}
		}
		return []Reply{c.menu("Нормы машины " + vehicle.Number + " обновлены ✅")}
	}
}

// --- delete vehicle ---

func (c *Controller) startDelete(ctx context.Context, userID int64) []Reply {
	vehicles, err := c.repo.GetVehicles(ctx, "")
	if err != nil {
		return []Reply{c.menu(msgSaveFailed)}
	}
	if len(vehicles) == 0 {
		return []Reply{c.menu("Машин пока нет — нечего удалять.")}
	}
	c.sessions.Begin(userID, session.StageDeleteSelect)
	return []Reply{promptWith("Какую машину удалить?", vehicleKeyboard(vehicles)...)}
}

func (c *Controller) handleDelete(ctx context.Context, userID int64, sess *session.Session, text string) []Reply {
	switch sess.Stage {
	case session.StageDeleteSelect:
		vehicles, err := c.repo.GetVehicles(ctx, "")
		if err != nil {
			c.sessions.Clear(userID)
			return []Reply{c.menu(msgSaveFailed)}
		}
		v := findByNumber(vehicles, text)
		if v == nil {
			return []Reply{promptWith("Такой машины нет. Выберите из списка:", vehicleKeyboard(vehicles)...)}
		}
		sess.Vehicle = v
		sess.Stage = session.StageDeleteConfirm
		return []Reply{promptWith(
			"Удалить машину "+v.Number+" вместе со всеми её путевыми листами?",
			[]string{BtnYes, BtnNo},
		)}

	default: // StageDeleteConfirm
		switch text {
		case BtnYes:
			vehicle := sess.Vehicle
			c.sessions.Clear(userID)
			ok, err := c.repo.DeleteVehicle(ctx, vehicle.ID)
			if err != nil || !ok {
				return []Reply{c.menu(msgSaveFailed)}
			}
			logger.FLOW.Info("vehicle flow finished",
				slog.String("event", "flow.vehicle.delete"),
				slog.Int64("user_id", userID),
				slog.Int64("vehicle_id", vehicle.ID),
			)
			return []Reply{c.menu("Машина " + vehicle.Number + " и её путевые листы удалены.")}
		case BtnNo:
			c.sessions.Clear(userID)
			return []Reply{c.menu("Удаление отменено.")}
		default:
			return []Reply{promptWith("Ответьте «✅ Да» или «❌ Нет».", []string{BtnYes, BtnNo})}
		}
	}
}

// --- search ---

func (c *Controller) handleSearch(ctx context.Context, userID int64, text string) []Reply {
	query := strings.TrimSpace(text)
	if query == "" {
		return []Reply{prompt("Введите часть госномера для поиска:")}
	}
	c.sessions.Clear(userID)
	vehicles, err := c.repo.GetVehicles(ctx, query)
	if err != nil {
		return []Reply{c.menu(msgSaveFailed)}
	}
	if len(vehicles) == 0 {
		return []Reply{c.menu("По запросу «" + query + "» ничего не найдено.")}
	}
	return []Reply{c.menu(format.VehicleList(vehicles))}
}

// --- statistics ---

func (c *Controller) startStats(ctx context.Context, userID int64) []Reply {
	vehicles, err := c.repo.GetVehicles(ctx, "")
	if err != nil {
		return []Reply{c.menu(msgSaveFailed)}
	}
	if len(vehicles) == 0 {
		return []Reply{c.menu("Машин пока нет — статистики нет.")}
	}
	c.sessions.Begin(userID, session.StageStatsSelect)
	return []Reply{promptWith("По какой машине показать статистику?", vehicleKeyboard(vehicles)...)}
}

func (c *Controller) handleStats(ctx context.Context, userID int64, sess *session.Session, text string) []Reply {
	switch sess.Stage {
	case session.StageStatsSelect:
		vehicles, err := c.repo.GetVehicles(ctx, "")
		if err != nil {
			c.sessions.Clear(userID)
			return []Reply{c.menu(msgSaveFailed)}
		}
		v := findByNumber(vehicles, text)
		if v == nil {
			return []Reply{promptWith("Такой машины нет. Выберите из списка:", vehicleKeyboard(vehicles)...)}
		}
		sess.Vehicle = v
		sess.Stage = session.StageStatsWindow
		return []Reply{promptWith("За какой период?", []string{BtnWeek, BtnMonth})}

	default: // StageStatsWindow
		var days int
		switch text {
		case BtnWeek:
			days = 7
		case BtnMonth:
			days = 30
		default:
			if v, ok := parsePositive(text, 365); ok && v == float64(int(v)) {
				days = int(v)
			} else {
				return []Reply{promptWith("Выберите период или введите число дней (1–365).", []string{BtnWeek, BtnMonth})}
			}
		}
		vehicle := sess.Vehicle
		c.sessions.Clear(userID)

		stats, err := c.repo.GetStatistics(ctx, vehicle.ID, userID, days)
		if err != nil {
			return []Reply{c.menu(msgSaveFailed)}
		}
		return []Reply{c.menu(format.StatisticsBlock(vehicle, days, stats))}
	}
}
