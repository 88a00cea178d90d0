package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"waybill-bot/internal/calc"
	"waybill-bot/internal/format"
	"waybill-bot/internal/logger"
	"waybill-bot/internal/models"
	"waybill-bot/internal/repository"
	"waybill-bot/internal/session"
	"waybill-bot/internal/validate"
)

const msgBadTime = "Время нужно в формате ЧЧ:ММ, например 08:30."

func (c *Controller) startWaybill(ctx context.Context, userID int64) []Reply {
	vehicles, err := c.repo.GetVehicles(ctx, "")
	if err != nil {
		return []Reply{c.menu(msgSaveFailed)}
	}
	if len(vehicles) == 0 {
		return []Reply{c.menu("Сначала добавьте машину через «➕ Добавить машину».")}
	}
	c.sessions.Begin(userID, session.StageWaybillVehicle)
	return []Reply{promptWith("На какой машине была поездка?", vehicleKeyboard(vehicles)...)}
}

// handleWaybill advances the create-waybill flow one stage per message.
func (c *Controller) handleWaybill(ctx context.Context, userID int64, sess *session.Session, text string) []Reply {
	d := sess.Waybill

	switch sess.Stage {
	case session.StageWaybillVehicle:
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
		sess.Waybill = &session.WaybillDraft{}

		last, err := c.repo.GetLastWaybill(ctx, v.ID, userID)
		if err == nil {
			sess.Stage = session.StageWaybillReuseChoice
			return []Reply{promptWith(
				fmt.Sprintf("Прошлый лист от %s: одометр %s, остаток %s л.\nВзять эти значения как начальные?",
					last.Date, format.Liters(last.OdoEnd), format.Liters(last.FuelEnd)),
				[]string{BtnReusePrev, BtnEnterNew},
			)}
		}
		if !errors.Is(err, repository.ErrNotFound) {
			logger.FLOW.Warn("last waybill lookup failed",
				slog.String("event", "flow.waybill"),
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
		}
		sess.Stage = session.StageWaybillStartTime
		return []Reply{prompt("Время выезда (ЧЧ:ММ):")}

	case session.StageWaybillReuseChoice:
		switch text {
		case BtnReusePrev:
			last, err := c.repo.GetLastWaybill(ctx, sess.Vehicle.ID, userID)
			if err != nil {
				c.sessions.Clear(userID)
				return []Reply{c.menu(msgSaveFailed)}
			}
			odo, fuel := last.OdoEnd, last.FuelEnd
			d.OdoStart = &odo
			d.FuelStart = &fuel
			d.ReusedPrevious = true
			sess.Stage = session.StageWaybillStartTime
			return []Reply{prompt("Время выезда (ЧЧ:ММ):")}
		case BtnEnterNew:
			sess.Stage = session.StageWaybillStartTime
			return []Reply{prompt("Время выезда (ЧЧ:ММ):")}
		default:
			return []Reply{promptWith("Выберите один из вариантов.", []string{BtnReusePrev, BtnEnterNew})}
		}

	case session.StageWaybillStartTime:
		t, ok := validate.ParseTime(text)
		if !ok {
			return []Reply{prompt(msgBadTime + " Время выезда:")}
		}
		d.StartTime = t
		if d.ReusedPrevious {
			// odometer and fuel are pre-filled, jump past both stages
			sess.Stage = session.StageWaybillEndTime
			return []Reply{prompt("Время возвращения (ЧЧ:ММ):")}
		}
		sess.Stage = session.StageWaybillOdoStart
		return []Reply{prompt("Одометр при выезде, км:")}

	case session.StageWaybillOdoStart:
		v, ok := parseNonNegative(text, maxOdometer)
		if !ok {
			return []Reply{prompt("Нужно неотрицательное число, например 152340. Одометр при выезде, км:")}
		}
		d.OdoStart = &v
		sess.Stage = session.StageWaybillFuelStart
		return []Reply{prompt("Топливо в баке при выезде, л:")}

	case session.StageWaybillFuelStart:
		v, ok := parseNonNegative(text, maxLiters)
		if !ok {
			return []Reply{prompt("Нужно неотрицательное число, например 40. Топливо при выезде, л:")}
		}
		d.FuelStart = &v
		sess.Stage = session.StageWaybillEndTime
		return []Reply{prompt("Время возвращения (ЧЧ:ММ):")}

	case session.StageWaybillEndTime:
		t, ok := validate.ParseTime(text)
		if !ok {
			return []Reply{prompt(msgBadTime + " Время возвращения:")}
		}
		d.EndTime = t
		sess.Stage = session.StageWaybillOdoEnd
		return []Reply{prompt(fmt.Sprintf("Одометр при возвращении, км (не меньше %s):", format.Liters(*d.OdoStart)))}

	case session.StageWaybillOdoEnd:
		v, ok := parseNonNegative(text, maxOdometer)
		if !ok || v < *d.OdoStart {
			return []Reply{prompt(fmt.Sprintf("Пробег не может быть отрицательным. Введите одометр не меньше %s:", format.Liters(*d.OdoStart)))}
		}
		d.OdoEnd = &v
		sess.Stage = session.StageWaybillOveruseChoice
		return []Reply{promptWith(
			"Был ли перерасход топлива?",
			[]string{BtnOveruseNone},
			[]string{BtnOveruseLiters, BtnOveruseIdle},
		)}

	case session.StageWaybillOveruseChoice:
		switch text {
		case BtnOveruseNone:
			zero := 0.0
			d.Overuse = &zero
			sess.Stage = session.StageWaybillEconomy
			return []Reply{economyPrompt()}
		case BtnOveruseLiters:
			sess.Stage = session.StageWaybillOveruseManual
			return []Reply{prompt("Перерасход, л:")}
		case BtnOveruseIdle:
			sess.Stage = session.StageWaybillIdleHours
			return []Reply{prompt("Часы простоя с работающим двигателем, ч:")}
		default:
			return []Reply{promptWith("Выберите один из вариантов.",
				[]string{BtnOveruseNone},
				[]string{BtnOveruseLiters, BtnOveruseIdle},
			)}
		}

	case session.StageWaybillOveruseManual:
		v, ok := parseNonNegative(text, maxLiters)
		if !ok {
			return []Reply{prompt("Нужно неотрицательное число. Перерасход, л:")}
		}
		d.Overuse = &v
		sess.Stage = session.StageWaybillEconomy
		return []Reply{economyPrompt()}

	case session.StageWaybillIdleHours:
		v, ok := parseNonNegative(text, maxHours)
		if !ok {
			return []Reply{prompt("Нужно число от 0 до 24. Часы простоя, ч:")}
		}
		d.IdleHours = &v
		sess.Stage = session.StageWaybillEconomy
		return []Reply{economyPrompt()}

	case session.StageWaybillEconomy:
		if text == BtnSkip {
			zero := 0.0
			d.Economy = &zero
		} else {
			v, ok := parseNonNegative(text, maxLiters)
			if !ok {
				return []Reply{economyPrompt()}
			}
			d.Economy = &v
		}
		sess.Stage = session.StageWaybillFuelEndChoice
		return []Reply{fuelEndPrompt()}

	case session.StageWaybillFuelEndChoice:
		switch text {
		case BtnFuelAuto:
			return c.finalizeWaybill(ctx, userID, sess)
		case BtnFuelManual:
			sess.Stage = session.StageWaybillFuelEnd
			return []Reply{prompt("Остаток топлива на конец дня, л:")}
		case BtnFuelRefuel:
			sess.Stage = session.StageWaybillRefuel
			return []Reply{prompt("Сколько заправлено, л:")}
		default:
			return []Reply{fuelEndPrompt()}
		}

	case session.StageWaybillRefuel:
		v, ok := parseNonNegative(text, maxLiters)
		if !ok {
			return []Reply{prompt("Нужно неотрицательное число. Сколько заправлено, л:")}
		}
		d.FuelRefuel = &v
		d.AfterRefuel = true
		sess.Stage = session.StageWaybillFuelEnd
		return []Reply{prompt("Остаток топлива на конец дня, л:")}

	default: // StageWaybillFuelEnd
		v, ok := parseNonNegative(text, maxLiters)
		if !ok {
			return []Reply{prompt("Нужно неотрицательное число. Остаток на конец дня, л:")}
		}
		d.FuelEndEntered = &v
		d.FuelEndManual = true
		return c.finalizeWaybill(ctx, userID, sess)
	}
}

func economyPrompt() Reply {
	return Reply{
		Text:     "Экономия топлива, л (или пропустите):",
		Keyboard: [][]string{{BtnSkip}, {BtnCancel}},
	}
}

func fuelEndPrompt() Reply {
	return promptWith(
		"Как определить остаток топлива на конец дня?",
		[]string{BtnFuelAuto},
		[]string{BtnFuelManual, BtnFuelRefuel},
	)
}

// finalizeWaybill runs the arithmetic in fixed order (norm → overuse →
// actual → balance), persists the record, and reports the summary. The
// session is cleared whether or not the save succeeds.
func (c *Controller) finalizeWaybill(ctx context.Context, userID int64, sess *session.Session) []Reply {
	v := sess.Vehicle
	d := sess.Waybill
	c.sessions.Clear(userID)

	_, _, hours := calc.Elapsed(d.StartTime, d.EndTime)
	distance := calc.Distance(*d.OdoStart, *d.OdoEnd)
	norm := calc.NormConsumption(distance, v.FuelRate)

	overuse := 0.0
	idleHours := 0.0
	switch {
	case d.Overuse != nil:
		overuse = *d.Overuse
	case d.IdleHours != nil:
		idleHours = *d.IdleHours
		overuse = calc.OveruseByIdle(idleHours, v.IdleRate)
	}

	economy := 0.0
	if d.Economy != nil {
		economy = *d.Economy
	}

	actual := calc.ActualConsumption(norm, overuse, economy)

	refuel := 0.0
	if d.FuelRefuel != nil {
		refuel = *d.FuelRefuel
	}
	fuelEnd := calc.FuelBalance(*d.FuelStart, refuel, actual)
	if d.FuelEndManual {
		if !d.AfterRefuel {
			refuel = calc.BackDeriveRefuel(*d.FuelEndEntered, fuelEnd)
		}
		fuelEnd = *d.FuelEndEntered
	}

	w := &models.Waybill{
		VehicleID:     v.ID,
		UserID:        userID,
		Date:          c.now().Format("2006-01-02"),
		StartTime:     d.StartTime,
		EndTime:       d.EndTime,
		Hours:         hours,
		OdoStart:      *d.OdoStart,
		OdoEnd:        *d.OdoEnd,
		Distance:      distance,
		FuelStart:     *d.FuelStart,
		FuelEnd:       fuelEnd,
		FuelRefuel:    refuel,
		NormFuel:      norm,
		Overuse:       overuse,
		IdleHours:     idleHours,
		Economy:       economy,
		ActualFuel:    actual,
		FuelEndManual: d.FuelEndManual,
	}

	id, err := c.repo.SaveWaybill(ctx, w)
	if err != nil {
		return []Reply{c.menu(msgSaveFailed)}
	}
	w.ID = id
	logger.FLOW.Info("waybill flow finished",
		slog.String("event", "flow.waybill.save"),
		slog.Int64("user_id", userID),
		slog.Int64("vehicle_id", v.ID),
		slog.Int64("waybill_id", id),
	)
	return []Reply{c.menu(format.Summary(v, w))}
}
