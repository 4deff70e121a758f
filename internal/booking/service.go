// internal/booking/service.go
package booking

import (
	"context"

	"github.com/google/uuid"

	"fleetbook/internal/fleet"
)

// CreateBookingInput carries a booking request from the transport layer.
type CreateBookingInput struct {
	OwnerID        string
	VehicleID      string
	Window         TimeWindow
	PickupLocation string
}

// Service defines the interface for the booking service.
type Service interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*Reservation, error)
	CancelBooking(ctx context.Context, id uuid.UUID, ownerID string) (*Reservation, error)
	GetBooking(ctx context.Context, id uuid.UUID, ownerID string) (*Reservation, error)
	ListBookings(ctx context.Context, ownerID string, filter ListFilter) ([]Reservation, error)
	AvailableVehicles(ctx context.Context, window TimeWindow, vehicleType string) ([]fleet.Vehicle, error)
}
