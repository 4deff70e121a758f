// internal/booking/errors.go
package booking

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrNotOwner        = errors.New("booking belongs to another user")
	ErrAlreadyFinal    = errors.New("booking is already cancelled or completed")
	ErrWindowElapsed   = errors.New("booking window has already passed")
	ErrRateLimited     = errors.New("too many booking requests")

	// ErrDuplicateReference is reported by the store when a freshly generated
	// reference collides with an existing one. The service retries with a new
	// reference; callers never see this error.
	ErrDuplicateReference = errors.New("booking reference already exists")
)

// ValidationError rejects a malformed request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError reports an overlapping confirmed booking, naming the
// reference of the reservation that holds the slot.
type ConflictError struct {
	Reference string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("vehicle is already booked for this time slot (booking %s)", e.Reference)
}
