// pkg/bookingstore/memory.go
package bookingstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetbook/internal/booking"
)

// MemoryStore is an in-process Store with the same conditional-write
// semantics as the Postgres store. A single mutex makes each write atomic,
// so the overlap precondition is re-evaluated at commit time exactly as the
// database transaction does. Used by unit tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]booking.Reservation
	byRef map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[uuid.UUID]booking.Reservation),
		byRef: make(map[string]uuid.UUID),
	}
}

func (m *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.byID[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return &r, nil
}

func (m *MemoryStore) ActiveByVehicle(ctx context.Context, vehicleID string, asOf time.Time) ([]booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []booking.Reservation
	for _, r := range m.byID {
		if r.VehicleID == vehicleID && r.Active(asOf) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListByOwner(ctx context.Context, ownerID string, filter booking.ListFilter) ([]booking.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []booking.Reservation
	for _, r := range m.byID {
		if r.OwnerID != ownerID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Date != "" && r.Window.Date != filter.Date {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) CreateIfFree(ctx context.Context, r *booking.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byRef[r.Reference]; taken {
		return booking.ErrDuplicateReference
	}

	// Commit-time re-check of the non-overlap invariant.
	var active []booking.Reservation
	for _, existing := range m.byID {
		if existing.VehicleID == r.VehicleID {
			active = append(active, existing)
		}
	}
	if winner := booking.FindConflict(r.Window, active, r.CreatedAt); winner != nil {
		return &booking.ConflictError{Reference: winner.Reference}
	}

	m.byID[r.ID] = *r
	m.byRef[r.Reference] = r.ID
	return nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next booking.Status, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.byID[id]
	if !ok {
		return booking.ErrBookingNotFound
	}
	if r.Status != expected {
		return booking.ErrAlreadyFinal
	}
	r.Status = next
	r.UpdatedAt = updatedAt
	m.byID[id] = r
	return nil
}
