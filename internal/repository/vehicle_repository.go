package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// VehicleRepository defines the interface for vehicle lookups. Vehicles are
// owned by the wider inventory system; the deal wizard only needs the VIN
// uniqueness check.
type VehicleRepository interface {
	// VINExists reports whether another vehicle already carries the VIN.
	// excludeVehicleID removes the vehicle being edited (0 excludes none).
	VINExists(ctx context.Context, vin string, excludeVehicleID int64) (bool, error)
}

// vehicleRepository implements VehicleRepository using PostgreSQL
type vehicleRepository struct {
	db *sql.DB
}

// NewVehicleRepository creates a new vehicle repository
func NewVehicleRepository(db *sql.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

// VINExists checks the VIN against the vehicles table
func (r *vehicleRepository) VINExists(ctx context.Context, vin string, excludeVehicleID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM vehicles
			WHERE UPPER(vin) = UPPER($1) AND id <> $2
		)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, vin, excludeVehicleID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check VIN: %w", err)
	}

	return exists, nil
}
