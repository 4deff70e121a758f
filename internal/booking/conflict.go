// internal/booking/conflict.go
package booking

import "time"

// FindConflict returns the reservation whose window overlaps the candidate,
// or nil if the slot is free. Only confirmed reservations whose window has
// not elapsed block the slot; cancelled, completed, and elapsed reservations
// free the vehicle for reuse. Callers may pass an unfiltered slice.
func FindConflict(window TimeWindow, existing []Reservation, now time.Time) *Reservation {
	for i := range existing {
		r := &existing[i]
		if !r.Active(now) {
			continue
		}
		if window.Overlaps(r.Window) {
			return r
		}
	}
	return nil
}
