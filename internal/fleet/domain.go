// internal/fleet/domain.go
package fleet

import "time"

// Vehicle statuses. Only available vehicles can be booked.
const (
	StatusAvailable   = "available"
	StatusMaintenance = "maintenance"
	StatusRetired     = "retired"
)

// Vehicle represents an e-scooter or e-bike in the fleet. The booking core
// reads vehicles and never mutates them.
type Vehicle struct {
	ID                 string    `json:"vehicle_id"`
	Type               string    `json:"type"`
	Model              string    `json:"model"`
	HourlyRate         int64     `json:"hourly_rate_cents"`
	BatteryLife        string    `json:"battery_life,omitempty"`
	Features           []string  `json:"features,omitempty"`
	AccessCodeTemplate string    `json:"access_code_template,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// VehicleAddedEvent is published when a vehicle joins the fleet.
type VehicleAddedEvent struct {
	ID         string `json:"vehicle_id"`
	Type       string `json:"type"`
	Model      string `json:"model"`
	HourlyRate int64  `json:"hourly_rate_cents"`
}

// VehicleRetiredEvent is published when a vehicle leaves the fleet.
type VehicleRetiredEvent struct {
	ID     string `json:"vehicle_id"`
	Status string `json:"status"`
}
