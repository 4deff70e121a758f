// internal/fleet/service.go
package fleet

import "context"

// AddVehicleInput carries the fields for a new fleet vehicle.
type AddVehicleInput struct {
	Type               string
	Model              string
	HourlyRate         int64
	BatteryLife        string
	Features           []string
	AccessCodeTemplate string
}

// UpdateVehicleInput carries mutable vehicle fields. Nil pointers leave the
// stored value untouched.
type UpdateVehicleInput struct {
	Model       *string
	HourlyRate  *int64
	BatteryLife *string
	Features    []string
	Status      *string
}

// Service defines the interface for the fleet catalog service.
type Service interface {
	AddVehicle(ctx context.Context, in AddVehicleInput) (*Vehicle, error)
	GetVehicle(ctx context.Context, id string) (*Vehicle, error)
	ListVehicles(ctx context.Context, vehicleType string) ([]Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, in UpdateVehicleInput) (*Vehicle, error)
	RemoveVehicle(ctx context.Context, id string) error
}
