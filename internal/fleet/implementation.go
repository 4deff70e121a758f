// internal/fleet/implementation.go
package fleet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrVehicleNotFound reports a lookup miss. The booking core maps it onto its
// own taxonomy at the client boundary.
var ErrVehicleNotFound = errors.New("vehicle not found")

// ValidationError rejects a malformed vehicle request. The handler maps it to
// a client error; anything else from the service is an infrastructure failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Schema creates the vehicles table.
const Schema = `
CREATE TABLE IF NOT EXISTS vehicles (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	model TEXT NOT NULL,
	hourly_rate_cents BIGINT NOT NULL,
	battery_life TEXT NOT NULL DEFAULT '',
	features TEXT[] NOT NULL DEFAULT '{}',
	access_code_template TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'available',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

// service implements the Service interface.
type service struct {
	db *sql.DB
}

// NewService creates a new fleet service instance.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// EnsureSchema creates the vehicles table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// AddVehicle registers a new vehicle in the fleet.
func (s *service) AddVehicle(ctx context.Context, in AddVehicleInput) (*Vehicle, error) {
	if in.Type == "" || in.Model == "" {
		return nil, &ValidationError{Reason: "type and model are required"}
	}
	if in.HourlyRate <= 0 {
		return nil, &ValidationError{Reason: "hourly rate must be positive"}
	}

	now := time.Now().UTC()
	v := &Vehicle{
		ID:                 uuid.NewString(),
		Type:               in.Type,
		Model:              in.Model,
		HourlyRate:         in.HourlyRate,
		BatteryLife:        in.BatteryLife,
		Features:           in.Features,
		AccessCodeTemplate: in.AccessCodeTemplate,
		Status:             StatusAvailable,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	query := `
		INSERT INTO vehicles (id, type, model, hourly_rate_cents, battery_life, features, access_code_template, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		v.ID, v.Type, v.Model, v.HourlyRate, v.BatteryLife,
		pq.Array(v.Features), v.AccessCodeTemplate, v.Status, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert vehicle: %w", err)
	}
	return v, nil
}

// GetVehicle retrieves a vehicle by its ID.
func (s *service) GetVehicle(ctx context.Context, id string) (*Vehicle, error) {
	query := `
		SELECT id, type, model, hourly_rate_cents, battery_life, features, access_code_template, status, created_at, updated_at
		FROM vehicles
		WHERE id = $1
	`
	v := &Vehicle{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID,
		&v.Type,
		&v.Model,
		&v.HourlyRate,
		&v.BatteryLife,
		pq.Array(&v.Features),
		&v.AccessCodeTemplate,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

// ListVehicles returns vehicles in insertion order, optionally filtered by
// type. Retired vehicles are excluded.
func (s *service) ListVehicles(ctx context.Context, vehicleType string) ([]Vehicle, error) {
	query := `
		SELECT id, type, model, hourly_rate_cents, battery_life, features, access_code_template, status, created_at, updated_at
		FROM vehicles
		WHERE status <> $1
	`
	args := []interface{}{StatusRetired}
	if vehicleType != "" {
		args = append(args, vehicleType)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		var v Vehicle
		err := rows.Scan(
			&v.ID,
			&v.Type,
			&v.Model,
			&v.HourlyRate,
			&v.BatteryLife,
			pq.Array(&v.Features),
			&v.AccessCodeTemplate,
			&v.Status,
			&v.CreatedAt,
			&v.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}
	return vehicles, nil
}

// UpdateVehicle applies partial updates to a vehicle.
func (s *service) UpdateVehicle(ctx context.Context, id string, in UpdateVehicleInput) (*Vehicle, error) {
	v, err := s.GetVehicle(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Model != nil {
		v.Model = *in.Model
	}
	if in.HourlyRate != nil {
		if *in.HourlyRate <= 0 {
			return nil, &ValidationError{Reason: "hourly rate must be positive"}
		}
		v.HourlyRate = *in.HourlyRate
	}
	if in.BatteryLife != nil {
		v.BatteryLife = *in.BatteryLife
	}
	if in.Features != nil {
		v.Features = in.Features
	}
	if in.Status != nil {
		switch *in.Status {
		case StatusAvailable, StatusMaintenance, StatusRetired:
			v.Status = *in.Status
		default:
			return nil, &ValidationError{Reason: fmt.Sprintf("unknown vehicle status %q", *in.Status)}
		}
	}
	v.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE vehicles
		SET model = $1, hourly_rate_cents = $2, battery_life = $3, features = $4, status = $5, updated_at = $6
		WHERE id = $7
	`
	_, err = s.db.ExecContext(ctx, query,
		v.Model, v.HourlyRate, v.BatteryLife, pq.Array(v.Features), v.Status, v.UpdatedAt, v.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update vehicle: %w", err)
	}
	return v, nil
}

// RemoveVehicle marks a vehicle as retired. Bookings reference vehicles by
// id, so rows are never deleted.
func (s *service) RemoveVehicle(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE vehicles
		SET status = $1, updated_at = $2
		WHERE id = $3
	`, StatusRetired, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("retire vehicle: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrVehicleNotFound
	}
	return nil
}
