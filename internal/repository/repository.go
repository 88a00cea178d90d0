// Package repository is the persistence gateway for vehicles and
// waybills. Storage errors are logged here and returned wrapped; the
// flow reports them as a failed operation without leaking driver text.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"waybill-bot/internal/logger"
	"waybill-bot/internal/models"
)

// ErrDuplicateNumber reports an attempt to register an already existing
// plate number. It is a recognized, non-fatal outcome.
var ErrDuplicateNumber = errors.New("vehicle number already exists")

// ErrNotFound reports a missing row.
var ErrNotFound = errors.New("not found")

const uniqueViolation = "23505"

// Repository provides CRUD for vehicles and waybills over Postgres.
type Repository struct {
	db *sqlx.DB
}

// New creates a Repository bound to the given database handle.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// NormalizeNumber upper-cases a plate number for the unique constraint.
func NormalizeNumber(number string) string {
	return strings.ToUpper(strings.TrimSpace(number))
}

// AddVehicle inserts a vehicle profile and returns its id. A duplicate
// plate returns ErrDuplicateNumber.
func (r *Repository) AddVehicle(ctx context.Context, number string, fuelRate, idleRate float64) (int64, error) {
	number = NormalizeNumber(number)
	var id int64
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO vehicles (number, fuel_rate, idle_rate) VALUES ($1, $2, $3) RETURNING id`,
		number, fuelRate, idleRate,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicateNumber
		}
		logger.REPO.Error("vehicle insert failed",
			slog.String("event", "vehicle.add"),
			slog.String("number", number),
			slog.String("err", err.Error()),
		)
		return 0, fmt.Errorf("add vehicle: %w", err)
	}
	logger.REPO.Info("vehicle added",
		slog.String("event", "vehicle.add"),
		slog.Int64("vehicle_id", id),
		slog.String("number", number),
	)
	return id, nil
}

// UpdateVehicle changes the consumption rates of an existing vehicle.
func (r *Repository) UpdateVehicle(ctx context.Context, id int64, fuelRate, idleRate float64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vehicles SET fuel_rate = $1, idle_rate = $2 WHERE id = $3`,
		fuelRate, idleRate, id,
	)
	if err != nil {
		logger.REPO.Error("vehicle update failed",
			slog.String("event", "vehicle.update"),
			slog.Int64("vehicle_id", id),
			slog.String("err", err.Error()),
		)
		return false, fmt.Errorf("update vehicle: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update vehicle: %w", err)
	}
	return n > 0, nil
}

// GetVehicles lists vehicles ordered by plate number; when search is
// non-empty only plates containing it (case-insensitive) are returned.
func (r *Repository) GetVehicles(ctx context.Context, search string) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	var err error
	if s := strings.TrimSpace(search); s != "" {
		err = r.db.SelectContext(ctx, &vehicles,
			`SELECT * FROM vehicles WHERE number ILIKE '%' || $1 || '%' ORDER BY number`, escapeLike(s))
	} else {
		err = r.db.SelectContext(ctx, &vehicles,
			`SELECT * FROM vehicles ORDER BY number`)
	}
	if err != nil {
		logger.REPO.Error("vehicle list failed",
			slog.String("event", "vehicle.list"),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("get vehicles: %w", err)
	}
	return vehicles, nil
}

// GetVehicle returns one vehicle by id or ErrNotFound.
func (r *Repository) GetVehicle(ctx context.Context, id int64) (*models.Vehicle, error) {
	var v models.Vehicle
	err := r.db.GetContext(ctx, &v, `SELECT * FROM vehicles WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return &v, nil
}

// DeleteVehicle removes a vehicle together with all of its waybills.
func (r *Repository) DeleteVehicle(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("delete vehicle: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM waybills WHERE vehicle_id = $1`, id); err != nil {
		logger.REPO.Error("waybill cascade delete failed",
			slog.String("event", "vehicle.delete"),
			slog.Int64("vehicle_id", id),
			slog.String("err", err.Error()),
		)
		return false, fmt.Errorf("delete waybills: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete vehicle: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete vehicle: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("delete vehicle: %w", err)
	}
	logger.REPO.Info("vehicle deleted",
		slog.String("event", "vehicle.delete"),
		slog.Int64("vehicle_id", id),
	)
	return n > 0, nil
}

// GetLastWaybill returns the most recent waybill for a vehicle and user
// (by date, then id) or ErrNotFound. Its odometer and fuel values seed
// the next day's defaults.
func (r *Repository) GetLastWaybill(ctx context.Context, vehicleID, userID int64) (*models.Waybill, error) {
	var w models.Waybill
	err := r.db.GetContext(ctx, &w,
		`SELECT id, vehicle_id, user_id, to_char(date, 'YYYY-MM-DD') AS date,
		        start_time, end_time, hours, odo_start, odo_end, distance,
		        fuel_start, fuel_end, fuel_refuel, norm_fuel, overuse,
		        idle_hours, economy, actual_fuel, fuel_end_manual, created_at
		 FROM waybills
		 WHERE vehicle_id = $1 AND user_id = $2
		 ORDER BY date DESC, id DESC
		 LIMIT 1`,
		vehicleID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.REPO.Error("last waybill lookup failed",
			slog.String("event", "waybill.last"),
			slog.Int64("vehicle_id", vehicleID),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("get last waybill: %w", err)
	}
	return &w, nil
}

// SaveWaybill inserts a completed waybill and returns its id.
func (r *Repository) SaveWaybill(ctx context.Context, w *models.Waybill) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO waybills (
			vehicle_id, user_id, date, start_time, end_time, hours,
			odo_start, odo_end, distance, fuel_start, fuel_end, fuel_refuel,
			norm_fuel, overuse, idle_hours, economy, actual_fuel, fuel_end_manual
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING id`,
		w.VehicleID, w.UserID, w.Date, w.StartTime, w.EndTime, w.Hours,
		w.OdoStart, w.OdoEnd, w.Distance, w.FuelStart, w.FuelEnd, w.FuelRefuel,
		w.NormFuel, w.Overuse, w.IdleHours, w.Economy, w.ActualFuel, w.FuelEndManual,
	).Scan(&id)
	if err != nil {
		logger.REPO.Error("waybill insert failed",
			slog.String("event", "waybill.save"),
			slog.Int64("vehicle_id", w.VehicleID),
			slog.Int64("user_id", w.UserID),
			slog.String("err", err.Error()),
		)
		return 0, fmt.Errorf("save waybill: %w", err)
	}
	logger.REPO.Info("waybill saved",
		slog.String("event", "waybill.save"),
		slog.Int64("waybill_id", id),
		slog.Int64("vehicle_id", w.VehicleID),
		slog.Int64("user_id", w.UserID),
	)
	return id, nil
}

// GetStatistics aggregates waybills for a vehicle and user over the
// trailing window: today plus the days-1 calendar days before it.
func (r *Repository) GetStatistics(ctx context.Context, vehicleID, userID int64, days int) (*models.Statistics, error) {
	var s models.Statistics
	err := r.db.GetContext(ctx, &s,
		`SELECT COUNT(*)                        AS trips,
		        COALESCE(SUM(distance), 0)     AS distance,
		        COALESCE(SUM(actual_fuel), 0)  AS actual_fuel,
		        COALESCE(SUM(fuel_refuel), 0)  AS fuel_refuel,
		        COALESCE(SUM(idle_hours), 0)   AS idle_hours
		 FROM waybills
		 WHERE vehicle_id = $1 AND user_id = $2
		   AND date > CURRENT_DATE - $3::int`,
		vehicleID, userID, days)
	if err != nil {
		logger.REPO.Error("statistics query failed",
			slog.String("event", "waybill.stats"),
			slog.Int64("vehicle_id", vehicleID),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("get statistics: %w", err)
	}
	if s.Distance > 0 {
		s.AvgPer100Km = s.ActualFuel / s.Distance * 100
	}
	return &s, nil
}

// escapeLike neutralizes LIKE metacharacters in user-supplied search
// text so "%" or "_" match literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
