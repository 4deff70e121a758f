// internal/booking/store.go
package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fleetbook/internal/fleet"
)

// ListFilter narrows an owner's booking listing. Empty fields match all.
type ListFilter struct {
	Status Status
	Date   string
}

// Store is the durable reservation storage the core depends on. All
// cross-request coordination happens through its conditional writes: a
// rejected write fails atomically and is reported to the caller, never
// retried behind their back.
type Store interface {
	// Get looks up a reservation by id. Returns ErrBookingNotFound if absent.
	Get(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// ActiveByVehicle returns the confirmed reservations for a vehicle whose
	// window has not fully elapsed as of the given instant.
	ActiveByVehicle(ctx context.Context, vehicleID string, asOf time.Time) ([]Reservation, error)

	// ListByOwner returns a user's reservations, newest first.
	ListByOwner(ctx context.Context, ownerID string, filter ListFilter) ([]Reservation, error)

	// CreateIfFree commits the reservation only if no confirmed reservation
	// with an overlapping window exists for the vehicle at commit time. On an
	// overlap it returns a *ConflictError naming the winning reference; on a
	// reference collision it returns ErrDuplicateReference.
	CreateIfFree(ctx context.Context, r *Reservation) error

	// UpdateStatus transitions a reservation only if its stored status still
	// matches expected. A mismatch returns ErrAlreadyFinal.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next Status, updatedAt time.Time) error
}

// Catalog is the read-only vehicle catalog collaborator.
type Catalog interface {
	// Vehicle looks up a single vehicle. Returns ErrVehicleNotFound if absent.
	Vehicle(ctx context.Context, id string) (*fleet.Vehicle, error)

	// Vehicles lists vehicles in catalog order, optionally filtered by type.
	Vehicles(ctx context.Context, vehicleType string) ([]fleet.Vehicle, error)
}
