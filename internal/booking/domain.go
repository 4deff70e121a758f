// internal/booking/domain.go
package booking

import (
	"time"

	"github.com/google/uuid"
)

// Status is the closed set of booking lifecycle states. Confirmed is the only
// initial state; cancelled and completed are terminal.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Reservation is a confirmed claim on a vehicle for a time window. All fields
// except Status and UpdatedAt are immutable after creation.
type Reservation struct {
	ID             uuid.UUID  `json:"booking_id"`
	Reference      string     `json:"booking_reference"`
	OwnerID        string     `json:"user_id"`
	VehicleID      string     `json:"vehicle_id"`
	Window         TimeWindow `json:"window"`
	PickupLocation string     `json:"pickup_location"`
	VehicleType    string     `json:"vehicle_type"`
	VehicleModel   string     `json:"vehicle_model"`
	HourlyRate     int64      `json:"hourly_rate_cents"`
	TotalCost      int64      `json:"total_cost_cents"`
	AccessCode     string     `json:"access_code"`
	Status         Status     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Active reports whether the reservation still blocks its vehicle slot:
// confirmed and not yet elapsed.
func (r *Reservation) Active(now time.Time) bool {
	return r.Status == StatusConfirmed && !r.Window.Elapsed(now)
}

// EffectiveStatus derives completion lazily: a confirmed reservation whose
// window has elapsed reads as completed even if no transition ran.
func (r *Reservation) EffectiveStatus(now time.Time) Status {
	if r.Status == StatusConfirmed && r.Window.Elapsed(now) {
		return StatusCompleted
	}
	return r.Status
}

// BookingCreatedEvent is published when a booking is confirmed.
type BookingCreatedEvent struct {
	BookingID uuid.UUID  `json:"booking_id"`
	Reference string     `json:"booking_reference"`
	OwnerID   string     `json:"user_id"`
	VehicleID string     `json:"vehicle_id"`
	Window    TimeWindow `json:"window"`
	TotalCost int64      `json:"total_cost_cents"`
}

// BookingCancelledEvent is published when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	Reference   string    `json:"booking_reference"`
	OwnerID     string    `json:"user_id"`
	VehicleID   string    `json:"vehicle_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}
