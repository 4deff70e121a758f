// internal/booking/availability.go
package booking

import (
	"context"
	"fmt"
	"time"

	"fleetbook/internal/fleet"
)

// FreeVehicles returns the vehicles free for the whole window, in catalog
// order. It is a point-in-time, side-effect-free read: nothing is reserved or
// locked, so a later create must re-validate against the store.
func FreeVehicles(ctx context.Context, catalog Catalog, store Store, window TimeWindow, vehicleType string, now time.Time) ([]fleet.Vehicle, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	vehicles, err := catalog.Vehicles(ctx, vehicleType)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}

	available := make([]fleet.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.Status != fleet.StatusAvailable {
			continue
		}
		active, err := store.ActiveByVehicle(ctx, v.ID, now)
		if err != nil {
			return nil, fmt.Errorf("load reservations for vehicle %s: %w", v.ID, err)
		}
		if FindConflict(window, active, now) == nil {
			available = append(available, v)
		}
	}
	return available, nil
}
