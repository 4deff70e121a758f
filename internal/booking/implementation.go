// internal/booking/implementation.go
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"fleetbook/internal/fleet"
)

// referenceRetries bounds how often a create is retried after a duplicate
// reference before the request fails.
const referenceRetries = 3

// service implements the Service interface.
type service struct {
	store    Store
	catalog  Catalog
	limiter  *rate.Limiter
	tracer   trace.Tracer
	created  metric.Int64Counter
	rejected metric.Int64Counter
	now      func() time.Time
}

// NewService creates a new booking service instance.
func NewService(store Store, catalog Catalog) Service {
	return NewServiceWithClock(store, catalog, func() time.Time { return time.Now().UTC() })
}

// NewServiceWithClock injects the time source, for tests that pin "now".
func NewServiceWithClock(store Store, catalog Catalog, now func() time.Time) Service {
	return NewServiceWithLimiter(store, catalog, rate.NewLimiter(rate.Every(time.Second), 20), now)
}

// NewServiceWithLimiter additionally injects the create-path rate limiter.
func NewServiceWithLimiter(store Store, catalog Catalog, limiter *rate.Limiter, now func() time.Time) Service {
	meter := otel.Meter("fleetbook/booking")
	created, _ := meter.Int64Counter("bookings.created")
	rejected, _ := meter.Int64Counter("bookings.conflicts")

	return &service{
		store:    store,
		catalog:  catalog,
		limiter:  limiter,
		tracer:   otel.Tracer("fleetbook/booking"),
		created:  created,
		rejected: rejected,
		now:      now,
	}
}

// CreateBooking orchestrates the reservation create path. Steps 1-4 run
// against a point-in-time read of the store, so the conditional write in
// step 5 re-asserts the non-overlap invariant at commit time; a lost race
// surfaces as the same conflict error a failed pre-check would produce.
func (s *service) CreateBooking(ctx context.Context, in CreateBookingInput) (*Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "booking.create",
		trace.WithAttributes(
			attribute.String("vehicle.id", in.VehicleID),
			attribute.String("window", in.Window.String()),
		),
	)
	defer span.End()

	if !s.limiter.Allow() {
		return nil, ErrRateLimited
	}

	now := s.now()

	// Step 1: Validate the request
	if strings.TrimSpace(in.OwnerID) == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "required"}
	}
	if strings.TrimSpace(in.VehicleID) == "" {
		return nil, &ValidationError{Field: "vehicle_id", Reason: "required"}
	}
	if strings.TrimSpace(in.PickupLocation) == "" {
		return nil, &ValidationError{Field: "pickup_location", Reason: "required"}
	}
	if err := in.Window.Validate(); err != nil {
		return nil, err
	}
	if in.Window.Elapsed(now) {
		return nil, &ValidationError{Field: "booking_date", Reason: "window is in the past"}
	}

	// Step 2: Look up the vehicle
	vehicle, err := s.catalog.Vehicle(ctx, in.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status != fleet.StatusAvailable {
		return nil, &ValidationError{Field: "vehicle_id", Reason: "vehicle is not available for booking"}
	}

	// Step 3: Check for conflicts against current active reservations
	active, err := s.store.ActiveByVehicle(ctx, in.VehicleID, now)
	if err != nil {
		return nil, fmt.Errorf("load active reservations: %w", err)
	}
	if winner := FindConflict(in.Window, active, now); winner != nil {
		s.rejected.Add(ctx, 1)
		span.SetAttributes(attribute.Bool("conflict.detected", true))
		return nil, &ConflictError{Reference: winner.Reference}
	}

	// Step 4: Assign cost, reference, and access code
	res := &Reservation{
		ID:             uuid.New(),
		OwnerID:        strings.TrimSpace(in.OwnerID),
		VehicleID:      vehicle.ID,
		Window:         in.Window,
		PickupLocation: strings.TrimSpace(in.PickupLocation),
		VehicleType:    vehicle.Type,
		VehicleModel:   vehicle.Model,
		HourlyRate:     vehicle.HourlyRate,
		TotalCost:      Cost(vehicle.HourlyRate, in.Window),
		Status:         StatusConfirmed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// Step 5: Conditional create; the store re-checks the window inside the
	// same transaction that commits the row. A duplicate reference is the one
	// failure retried here, always with a freshly generated reference.
	for attempt := 0; attempt < referenceRetries; attempt++ {
		res.Reference = NewReference(s.now())
		res.AccessCode = DeriveAccessCode(vehicle.AccessCodeTemplate, res.Reference)

		err = s.store.CreateIfFree(ctx, res)
		if err == nil {
			s.created.Add(ctx, 1)
			span.SetAttributes(attribute.String("booking.reference", res.Reference))
			return res, nil
		}
		if errors.Is(err, ErrDuplicateReference) {
			continue
		}
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			s.rejected.Add(ctx, 1)
			span.SetAttributes(attribute.Bool("conflict.detected", true))
		}
		return nil, err
	}
	return nil, fmt.Errorf("allocate booking reference: %w", err)
}

// CancelBooking transitions a confirmed booking to cancelled. The store-level
// status precondition guards against racing with a concurrent cancel.
func (s *service) CancelBooking(ctx context.Context, id uuid.UUID, ownerID string) (*Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "booking.cancel",
		trace.WithAttributes(attribute.String("booking.id", id.String())),
	)
	defer span.End()

	res, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.OwnerID != ownerID {
		return nil, ErrNotOwner
	}

	if res.Status != StatusConfirmed {
		return nil, ErrAlreadyFinal
	}
	now := s.now()
	if res.Window.Elapsed(now) {
		return nil, ErrWindowElapsed
	}

	if err := s.store.UpdateStatus(ctx, id, StatusConfirmed, StatusCancelled, now); err != nil {
		return nil, err
	}

	res.Status = StatusCancelled
	res.UpdatedAt = now
	span.SetAttributes(attribute.String("booking.reference", res.Reference))
	return res, nil
}

// GetBooking retrieves a booking, scoped to its owner.
func (s *service) GetBooking(ctx context.Context, id uuid.UUID, ownerID string) (*Reservation, error) {
	res, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	res.Status = res.EffectiveStatus(s.now())
	return res, nil
}

// ListBookings returns a user's bookings with completion derived at read
// time, optionally filtered by status and date.
func (s *service) ListBookings(ctx context.Context, ownerID string, filter ListFilter) ([]Reservation, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "required"}
	}

	// Status filtering happens here rather than in the store so that derived
	// completion is taken into account.
	all, err := s.store.ListByOwner(ctx, ownerID, ListFilter{Date: filter.Date})
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	now := s.now()
	out := make([]Reservation, 0, len(all))
	for _, r := range all {
		r.Status = r.EffectiveStatus(now)
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// AvailableVehicles answers which vehicles are free for the window. No lock
// is taken; creation re-validates.
func (s *service) AvailableVehicles(ctx context.Context, window TimeWindow, vehicleType string) ([]fleet.Vehicle, error) {
	ctx, span := s.tracer.Start(ctx, "booking.availability",
		trace.WithAttributes(attribute.String("window", window.String())),
	)
	defer span.End()

	vehicles, err := FreeVehicles(ctx, s.catalog, s.store, window, vehicleType, s.now())
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("vehicles.available", len(vehicles)))
	return vehicles, nil
}
