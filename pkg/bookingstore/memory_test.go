package bookingstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetbook/internal/booking"
)

func seedReservation(ref, owner, vehicle string, window booking.TimeWindow) *booking.Reservation {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	return &booking.Reservation{
		ID:        uuid.New(),
		Reference: ref,
		OwnerID:   owner,
		VehicleID: vehicle,
		Window:    window,
		Status:    booking.StatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryStoreCreateIfFree(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	window := booking.TimeWindow{Date: "2026-09-01", Start: "10:00", End: "12:00"}

	first := seedReservation("BK-A", "user-x", "scooter-1", window)
	require.NoError(t, store.CreateIfFree(ctx, first))

	// Overlapping window on the same vehicle loses, naming the winner.
	err := store.CreateIfFree(ctx, seedReservation("BK-B", "user-y", "scooter-1",
		booking.TimeWindow{Date: "2026-09-01", Start: "11:00", End: "13:00"}))
	var conflict *booking.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "BK-A", conflict.Reference)

	// Same window on another vehicle is fine.
	assert.NoError(t, store.CreateIfFree(ctx, seedReservation("BK-C", "user-y", "scooter-2", window)))

	// Duplicate reference is reported distinctly from a window conflict.
	err = store.CreateIfFree(ctx, seedReservation("BK-A", "user-z", "scooter-3", window))
	assert.ErrorIs(t, err, booking.ErrDuplicateReference)
}

func TestMemoryStoreUpdateStatusPrecondition(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	r := seedReservation("BK-A", "user-x", "scooter-1",
		booking.TimeWindow{Date: "2026-09-01", Start: "10:00", End: "12:00"})
	require.NoError(t, store.CreateIfFree(ctx, r))

	require.NoError(t, store.UpdateStatus(ctx, r.ID, booking.StatusConfirmed, booking.StatusCancelled, now))

	// The precondition no longer holds; a second transition is rejected.
	err := store.UpdateStatus(ctx, r.ID, booking.StatusConfirmed, booking.StatusCancelled, now)
	assert.ErrorIs(t, err, booking.ErrAlreadyFinal)

	err = store.UpdateStatus(ctx, uuid.New(), booking.StatusConfirmed, booking.StatusCancelled, now)
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)

	got, err := store.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, got.Status)
	assert.Equal(t, now, got.UpdatedAt)
}

func TestMemoryStoreActiveByVehicleExcludesInactive(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	asOf := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	live := seedReservation("BK-A", "user-x", "scooter-1",
		booking.TimeWindow{Date: "2026-09-01", Start: "10:00", End: "12:00"})
	elapsed := seedReservation("BK-B", "user-x", "scooter-1",
		booking.TimeWindow{Date: "2026-08-30", Start: "10:00", End: "12:00"})
	cancelled := seedReservation("BK-C", "user-x", "scooter-1",
		booking.TimeWindow{Date: "2026-09-01", Start: "14:00", End: "16:00"})

	require.NoError(t, store.CreateIfFree(ctx, live))
	require.NoError(t, store.CreateIfFree(ctx, elapsed))
	require.NoError(t, store.CreateIfFree(ctx, cancelled))
	require.NoError(t, store.UpdateStatus(ctx, cancelled.ID, booking.StatusConfirmed, booking.StatusCancelled, asOf))

	active, err := store.ActiveByVehicle(ctx, "scooter-1", asOf)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "BK-A", active[0].Reference)
}

func TestMemoryStoreListByOwnerNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	older := seedReservation("BK-A", "user-x", "scooter-1",
		booking.TimeWindow{Date: "2026-09-01", Start: "10:00", End: "12:00"})
	newer := seedReservation("BK-B", "user-x", "scooter-2",
		booking.TimeWindow{Date: "2026-09-02", Start: "10:00", End: "12:00"})
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	other := seedReservation("BK-C", "user-y", "scooter-3",
		booking.TimeWindow{Date: "2026-09-01", Start: "10:00", End: "12:00"})

	require.NoError(t, store.CreateIfFree(ctx, older))
	require.NoError(t, store.CreateIfFree(ctx, newer))
	require.NoError(t, store.CreateIfFree(ctx, other))

	got, err := store.ListByOwner(ctx, "user-x", booking.ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "BK-B", got[0].Reference)
	assert.Equal(t, "BK-A", got[1].Reference)
}
