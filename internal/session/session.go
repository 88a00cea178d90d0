// Package session keeps per-user conversation state: the current stage
// and a typed, partially-populated draft of whatever is being entered.
// Sessions live in process memory only.
package session

import "waybill-bot/internal/models"

// Stage identifies a conversation step.
type Stage string

// StageIdle indicates there is no active conversation with the user.
const StageIdle Stage = "idle"

// Add-vehicle flow stages.
const (
	StageVehicleNumber   Stage = "vehicle.number"
	StageVehicleFuelRate Stage = "vehicle.fuel_rate"
	StageVehicleIdleRate Stage = "vehicle.idle_rate"
)

// Edit-vehicle flow stages.
const (
	StageEditSelect   Stage = "edit.select"
	StageEditFuelRate Stage = "edit.fuel_rate"
	StageEditIdleRate Stage = "edit.idle_rate"
)

// Delete-vehicle flow stages.
const (
	StageDeleteSelect  Stage = "delete.select"
	StageDeleteConfirm Stage = "delete.confirm"
)

// Search flow stage.
const StageSearchQuery Stage = "search.query"

// Statistics flow stages.
const (
	StageStatsSelect Stage = "stats.select"
	StageStatsWindow Stage = "stats.window"
)

// Create-waybill flow stages.
const (
	StageWaybillVehicle       Stage = "waybill.vehicle"
	StageWaybillReuseChoice   Stage = "waybill.reuse_choice"
	StageWaybillStartTime     Stage = "waybill.start_time"
	StageWaybillOdoStart      Stage = "waybill.odo_start"
	StageWaybillFuelStart     Stage = "waybill.fuel_start"
	StageWaybillEndTime       Stage = "waybill.end_time"
	StageWaybillOdoEnd        Stage = "waybill.odo_end"
	StageWaybillOveruseChoice Stage = "waybill.overuse_choice"
	StageWaybillOveruseManual Stage = "waybill.overuse_manual"
	StageWaybillIdleHours     Stage = "waybill.idle_hours"
	StageWaybillEconomy       Stage = "waybill.economy"
	StageWaybillFuelEndChoice Stage = "waybill.fuel_end_choice"
	StageWaybillRefuel        Stage = "waybill.refuel"
	StageWaybillFuelEnd       Stage = "waybill.fuel_end"
)

// VehicleDraft accumulates fields of the add/edit vehicle flows. The
// idle rate finishes the flow and is never stored in the draft.
type VehicleDraft struct {
	Number   string
	FuelRate *float64
}

// WaybillDraft accumulates fields of the create-waybill flow. Pointer
// fields are nil until the corresponding stage has been passed.
type WaybillDraft struct {
	ReusedPrevious bool
	StartTime      string
	EndTime        string
	OdoStart       *float64
	OdoEnd         *float64
	FuelStart      *float64
	Overuse        *float64
	IdleHours      *float64
	Economy        *float64
	FuelRefuel     *float64
	FuelEndEntered *float64
	FuelEndManual  bool
	AfterRefuel    bool
}

// Session is one user's active conversation.
type Session struct {
	Stage   Stage
	Vehicle *models.Vehicle
	Veh     *VehicleDraft
	Waybill *WaybillDraft
}

// Store keeps sessions keyed by user id. Implementations are injected
// into the flow controller.
type Store interface {
	// Get returns the stored session for a user, or nil when there is
	// no active conversation.
	Get(userID int64) *Session
	// Begin replaces any previous session with a fresh one at the given
	// stage and returns it.
	Begin(userID int64, stage Stage) *Session
	// Clear removes the session for a user.
	Clear(userID int64)
	// InProgress reports whether the user has an active conversation.
	InProgress(userID int64) bool
}
