// Package format renders replies from already-computed values. It is a
// pure formatting layer: the same input always produces the same text.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"waybill-bot/internal/calc"
	"waybill-bot/internal/models"
)

// Liters renders a fuel volume with up to two decimals, without a
// trailing zero tail ("21", "21.5", "21.75").
func Liters(v float64) string {
	return strconv.FormatFloat(calc.Round2(v), 'f', -1, 64)
}

// VehicleLine renders a single vehicle entry for lists.
func VehicleLine(v models.Vehicle) string {
	return fmt.Sprintf("🚚 %s — %s л/100км, простой %s л/ч", v.Number, Liters(v.FuelRate), Liters(v.IdleRate))
}

// VehicleList renders a numbered vehicle list or a placeholder when the
// list is empty.
func VehicleList(vehicles []models.Vehicle) string {
	if len(vehicles) == 0 {
		return "Машин пока нет. Добавьте первую через меню «➕ Добавить машину»."
	}
	var b strings.Builder
	b.WriteString("Список машин:\n")
	for i, v := range vehicles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, VehicleLine(v))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Summary renders the post-save waybill report: every entered and
// derived field, the specific consumption and an economy-vs-overuse
// verdict.
func Summary(v *models.Vehicle, w *models.Waybill) string {
	// exact minutes come from the stored times, not the rounded decimal
	hours, minutes, _ := calc.Elapsed(w.StartTime, w.EndTime)

	var b strings.Builder
	b.WriteString("📋 Путевой лист сохранён\n\n")
	fmt.Fprintf(&b, "🚚 %s\n", v.Number)
	fmt.Fprintf(&b, "📅 Дата: %s\n", w.Date)
	fmt.Fprintf(&b, "🕗 Время: %s – %s (%s)\n", w.StartTime, w.EndTime, calc.FormatDuration(hours, minutes))
	fmt.Fprintf(&b, "🛣 Одометр: %s – %s, пробег %s км\n", Liters(w.OdoStart), Liters(w.OdoEnd), Liters(w.Distance))
	fmt.Fprintf(&b, "⛽️ Топливо при выезде: %s л\n", Liters(w.FuelStart))
	if w.FuelRefuel > 0 {
		fmt.Fprintf(&b, "⛽️ Заправлено: %s л\n", Liters(w.FuelRefuel))
	}
	fmt.Fprintf(&b, "📐 Расход по норме: %s л\n", Liters(w.NormFuel))
	if w.IdleHours > 0 {
		fmt.Fprintf(&b, "🔥 Перерасход: %s л (простой %s ч)\n", Liters(w.Overuse), Liters(w.IdleHours))
	} else if w.Overuse > 0 {
		fmt.Fprintf(&b, "🔥 Перерасход: %s л\n", Liters(w.Overuse))
	}
	if w.Economy > 0 {
		fmt.Fprintf(&b, "🌱 Экономия: %s л\n", Liters(w.Economy))
	}
	fmt.Fprintf(&b, "🧮 Фактический расход: %s л\n", Liters(w.ActualFuel))
	if w.FuelEndManual {
		fmt.Fprintf(&b, "⛽️ Остаток на конец (введён вручную): %s л\n", Liters(w.FuelEnd))
	} else {
		fmt.Fprintf(&b, "⛽️ Остаток на конец: %s л\n", Liters(w.FuelEnd))
	}
	if spec := calc.SpecificConsumption(w.ActualFuel, w.Distance); spec > 0 {
		fmt.Fprintf(&b, "📊 Удельный расход: %s л/100км\n", Liters(spec))
	}
	b.WriteString(verdict(w.Economy, w.Overuse))
	if w.FuelEnd < 0 {
		b.WriteString("\n⚠️ Остаток топлива отрицательный — проверьте введённые данные.")
	}
	return b.String()
}

func verdict(economy, overuse float64) string {
	switch {
	case economy > overuse:
		return "✅ Итог: экономия превышает перерасход."
	case overuse > economy:
		return "❗️ Итог: перерасход превышает экономию."
	default:
		return "➖ Итог: экономия и перерасход равны."
	}
}

// StatisticsBlock renders the trailing-window aggregates for a vehicle.
func StatisticsBlock(v *models.Vehicle, days int, s *models.Statistics) string {
	if s.Trips == 0 {
		return fmt.Sprintf("📊 %s: за последние %d дн. путевых листов нет.", v.Number, days)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s за последние %d дн.\n\n", v.Number, days)
	fmt.Fprintf(&b, "Поездок: %d\n", s.Trips)
	fmt.Fprintf(&b, "Пробег: %s км\n", Liters(s.Distance))
	fmt.Fprintf(&b, "Расход топлива: %s л\n", Liters(s.ActualFuel))
	fmt.Fprintf(&b, "Заправлено: %s л\n", Liters(s.FuelRefuel))
	fmt.Fprintf(&b, "Часы простоя: %s ч\n", Liters(s.IdleHours))
	fmt.Fprintf(&b, "Средний расход: %s л/100км", Liters(s.AvgPer100Km))
	return b.String()
}
