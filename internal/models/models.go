package models

import "time"

// Vehicle is a registered vehicle profile with its rated fuel consumption.
type Vehicle struct {
	ID        int64     `db:"id"`
	Number    string    `db:"number"`
	FuelRate  float64   `db:"fuel_rate"` // liters per 100 km
	IdleRate  float64   `db:"idle_rate"` // liters per hour of idling
	CreatedAt time.Time `db:"created_at"`
}

// Waybill is one day's trip record for a vehicle. Records are immutable
// after creation and removed only together with their vehicle.
type Waybill struct {
	ID            int64     `db:"id"`
	VehicleID     int64     `db:"vehicle_id"`
	UserID        int64     `db:"user_id"`
	Date          string    `db:"date"` // YYYY-MM-DD
	StartTime     string    `db:"start_time"`
	EndTime       string    `db:"end_time"`
	Hours         float64   `db:"hours"`
	OdoStart      float64   `db:"odo_start"`
	OdoEnd        float64   `db:"odo_end"`
	Distance      float64   `db:"distance"`
	FuelStart     float64   `db:"fuel_start"`
	FuelEnd       float64   `db:"fuel_end"`
	FuelRefuel    float64   `db:"fuel_refuel"`
	NormFuel      float64   `db:"norm_fuel"`
	Overuse       float64   `db:"overuse"`
	IdleHours     float64   `db:"idle_hours"`
	Economy       float64   `db:"economy"`
	ActualFuel    float64   `db:"actual_fuel"`
	FuelEndManual bool      `db:"fuel_end_manual"`
	CreatedAt     time.Time `db:"created_at"`
}

// Statistics aggregates waybills of one vehicle for one user over a
// trailing window of days.
type Statistics struct {
	Trips       int     `db:"trips"`
	Distance    float64 `db:"distance"`
	ActualFuel  float64 `db:"actual_fuel"`
	FuelRefuel  float64 `db:"fuel_refuel"`
	IdleHours   float64 `db:"idle_hours"`
	AvgPer100Km float64
}
