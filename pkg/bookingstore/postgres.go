// pkg/bookingstore/postgres.go
package bookingstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fleetbook/internal/booking"
)

// Schema creates the bookings table. Window times are stored as the same
// minute-resolution strings the domain uses, so "HH:MM" comparisons stay
// consistent between SQL and Go.
const Schema = `
CREATE TABLE IF NOT EXISTS bookings (
	id UUID PRIMARY KEY,
	reference TEXT NOT NULL UNIQUE,
	owner_id TEXT NOT NULL,
	vehicle_id TEXT NOT NULL,
	booking_date TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	pickup_location TEXT NOT NULL,
	vehicle_type TEXT NOT NULL DEFAULT '',
	vehicle_model TEXT NOT NULL DEFAULT '',
	hourly_rate_cents BIGINT NOT NULL,
	total_cost_cents BIGINT NOT NULL,
	access_code TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS bookings_vehicle_date_idx ON bookings (vehicle_id, booking_date);
CREATE INDEX IF NOT EXISTS bookings_owner_idx ON bookings (owner_id);
`

// PostgresStore implements booking.Store with optimistic concurrency: the
// non-overlap precondition is re-evaluated inside the serializable
// transaction that commits the write, never trusted from an earlier read.
type PostgresStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		tracer: otel.Tracer("fleetbook/bookingstore"),
	}
}

// EnsureSchema creates the bookings table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const selectColumns = `
	id, reference, owner_id, vehicle_id, booking_date, start_time, end_time,
	pickup_location, vehicle_type, vehicle_model, hourly_rate_cents,
	total_cost_cents, access_code, status, created_at, updated_at
`

func scanReservation(scan func(...interface{}) error) (*booking.Reservation, error) {
	r := &booking.Reservation{}
	err := scan(
		&r.ID,
		&r.Reference,
		&r.OwnerID,
		&r.VehicleID,
		&r.Window.Date,
		&r.Window.Start,
		&r.Window.End,
		&r.PickupLocation,
		&r.VehicleType,
		&r.VehicleModel,
		&r.HourlyRate,
		&r.TotalCost,
		&r.AccessCode,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
	query := `SELECT` + selectColumns + `FROM bookings WHERE id = $1`

	r, err := scanReservation(s.db.QueryRowContext(ctx, query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, booking.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ActiveByVehicle(ctx context.Context, vehicleID string, asOf time.Time) ([]booking.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "bookingstore.active_by_vehicle",
		trace.WithAttributes(attribute.String("vehicle.id", vehicleID)),
	)
	defer span.End()

	query := `SELECT` + selectColumns + `
		FROM bookings
		WHERE vehicle_id = $1 AND status = $2
		ORDER BY booking_date, start_time
	`
	rows, err := s.db.QueryContext(ctx, query, vehicleID, booking.StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("query active bookings: %w", err)
	}
	defer rows.Close()

	var out []booking.Reservation
	for rows.Next() {
		r, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if r.Active(asOf) {
			out = append(out, *r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	span.SetAttributes(attribute.Int("bookings.active", len(out)))
	return out, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string, filter booking.ListFilter) ([]booking.Reservation, error) {
	query := `SELECT` + selectColumns + `FROM bookings WHERE owner_id = $1`
	args := []interface{}{ownerID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Date != "" {
		args = append(args, filter.Date)
		query += fmt.Sprintf(" AND booking_date = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var out []booking.Reservation
	for rows.Next() {
		r, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return out, nil
}

// CreateIfFree commits the reservation only if no confirmed overlapping
// booking exists for the vehicle at commit time. The overlap check runs
// inside a serializable transaction together with the insert, so two racing
// creates for the same slot cannot both pass it: the loser fails with either
// the in-transaction conflict or a serialization error, and both map to the
// same ConflictError the pre-check would have produced.
func (s *PostgresStore) CreateIfFree(ctx context.Context, r *booking.Reservation) error {
	ctx, span := s.tracer.Start(ctx, "bookingstore.create_if_free",
		trace.WithAttributes(
			attribute.String("vehicle.id", r.VehicleID),
			attribute.String("booking.reference", r.Reference),
		),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Re-assert the non-overlap invariant against committed state, using the
	// shared domain comparison rather than a second SQL encoding of it.
	rows, err := tx.QueryContext(ctx, `
		SELECT reference, booking_date, start_time, end_time, status
		FROM bookings
		WHERE vehicle_id = $1 AND booking_date = $2 AND status = $3
	`, r.VehicleID, r.Window.Date, booking.StatusConfirmed)
	if err != nil {
		return fmt.Errorf("query committed bookings: %w", err)
	}

	var committed []booking.Reservation
	for rows.Next() {
		var c booking.Reservation
		if err := rows.Scan(&c.Reference, &c.Window.Date, &c.Window.Start, &c.Window.End, &c.Status); err != nil {
			rows.Close()
			return fmt.Errorf("scan committed booking: %w", err)
		}
		committed = append(committed, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterate committed bookings: %w", err)
	}
	rows.Close()

	if winner := booking.FindConflict(r.Window, committed, r.CreatedAt); winner != nil {
		span.SetAttributes(attribute.Bool("conflict.detected", true))
		return &booking.ConflictError{Reference: winner.Reference}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (
			id, reference, owner_id, vehicle_id, booking_date, start_time,
			end_time, pickup_location, vehicle_type, vehicle_model,
			hourly_rate_cents, total_cost_cents, access_code, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		r.ID, r.Reference, r.OwnerID, r.VehicleID, r.Window.Date, r.Window.Start,
		r.Window.End, r.PickupLocation, r.VehicleType, r.VehicleModel,
		r.HourlyRate, r.TotalCost, r.AccessCode, r.Status,
		r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return s.mapWriteError(ctx, err, r, span)
	}

	if err := tx.Commit(); err != nil {
		return s.mapWriteError(ctx, err, r, span)
	}

	span.SetAttributes(attribute.Bool("create.success", true))
	return nil
}

// mapWriteError converts driver failures into the store's typed outcomes. A
// unique violation on the reference column means the generated reference
// collided; a serialization failure means a racing create won the slot.
func (s *PostgresStore) mapWriteError(ctx context.Context, err error, r *booking.Reservation, span trace.Span) error {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return fmt.Errorf("insert booking: %w", err)
	}

	switch pqErr.Code {
	case "23505": // unique_violation
		span.SetAttributes(attribute.Bool("reference.duplicate", true))
		return booking.ErrDuplicateReference
	case "40001": // serialization_failure
		span.SetAttributes(attribute.Bool("conflict.detected", true))
		return &booking.ConflictError{Reference: s.committedWinner(ctx, r)}
	}
	return fmt.Errorf("insert booking: %w", err)
}

// committedWinner names the booking that took the slot, for the conflict
// error surfaced to the caller. Best effort: the racing write has committed
// by the time the loser's transaction aborts.
func (s *PostgresStore) committedWinner(ctx context.Context, r *booking.Reservation) string {
	var reference string
	err := s.db.QueryRowContext(ctx, `
		SELECT reference
		FROM bookings
		WHERE vehicle_id = $1 AND booking_date = $2 AND status = $3
		AND start_time < $4 AND end_time > $5
		LIMIT 1
	`, r.VehicleID, r.Window.Date, booking.StatusConfirmed, r.Window.End, r.Window.Start).Scan(&reference)
	if err != nil {
		return ""
	}
	return reference
}

// UpdateStatus transitions a booking conditionally on its current status, so
// a concurrent cancel or completion cannot be overwritten.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next booking.Status, updatedAt time.Time) error {
	ctx, span := s.tracer.Start(ctx, "bookingstore.update_status",
		trace.WithAttributes(
			attribute.String("booking.id", id.String()),
			attribute.String("status.next", string(next)),
		),
	)
	defer span.End()

	result, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`, next, updatedAt, id, expected)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Either the booking is gone or its status changed underneath us.
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return getErr
		}
		span.SetAttributes(attribute.Bool("conflict.detected", true))
		return booking.ErrAlreadyFinal
	}
	return nil
}
