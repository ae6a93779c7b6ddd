package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
)

// VendorRepository defines the interface for vendor data access
type VendorRepository interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	GetByID(ctx context.Context, id int64) (*models.Vendor, error)
	List(ctx context.Context, filter models.VendorFilter) ([]*models.Vendor, int64, error)
	Update(ctx context.Context, vendor *models.Vendor) error
	Delete(ctx context.Context, id int64) error
}

// vendorRepository implements VendorRepository using PostgreSQL
type vendorRepository struct {
	db *sql.DB
}

// NewVendorRepository creates a new vendor repository
func NewVendorRepository(db *sql.DB) VendorRepository {
	return &vendorRepository{db: db}
}

// Create inserts a new vendor
func (r *vendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	query := `
		INSERT INTO vendors (organization_id, name, phone, email, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(
		ctx,
		query,
		vendor.OrganizationID,
		vendor.Name,
		vendor.Phone,
		vendor.Email,
		vendor.Active,
	).Scan(&vendor.ID)

	if err != nil {
		return fmt.Errorf("failed to create vendor: %w", err)
	}

	return nil
}

// GetByID retrieves a vendor by ID
func (r *vendorRepository) GetByID(ctx context.Context, id int64) (*models.Vendor, error) {
	query := `
		SELECT id, organization_id, name, phone, email, active
		FROM vendors
		WHERE id = $1`

	vendor := &models.Vendor{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&vendor.ID,
		&vendor.OrganizationID,
		&vendor.Name,
		&vendor.Phone,
		&vendor.Email,
		&vendor.Active,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("vendor with ID %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}

	return vendor, nil
}

// List retrieves vendors with pagination and filtering
func (r *vendorRepository) List(ctx context.Context, filter models.VendorFilter) ([]*models.Vendor, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	query := `
		SELECT id, organization_id, name, phone, email, active
		FROM vendors
		WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM vendors WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.OrganizationID > 0 {
		query += fmt.Sprintf(" AND organization_id = $%d", argPos)
		countQuery += fmt.Sprintf(" AND organization_id = $%d", argPos)
		args = append(args, filter.OrganizationID)
		argPos++
	}

	if filter.ActiveOnly {
		query += " AND active = TRUE"
		countQuery += " AND active = TRUE"
	}

	var totalCount int64
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count vendors: %w", err)
	}

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	vendors := []*models.Vendor{}
	for rows.Next() {
		vendor := &models.Vendor{}
		err := rows.Scan(
			&vendor.ID,
			&vendor.OrganizationID,
			&vendor.Name,
			&vendor.Phone,
			&vendor.Email,
			&vendor.Active,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, vendor)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating vendors: %w", err)
	}

	return vendors, totalCount, nil
}

// Update updates an existing vendor
func (r *vendorRepository) Update(ctx context.Context, vendor *models.Vendor) error {
	query := `
		UPDATE vendors
		SET name = $1, phone = $2, email = $3, active = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(
		ctx,
		query,
		vendor.Name,
		vendor.Phone,
		vendor.Email,
		vendor.Active,
		vendor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vendor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("vendor with ID %d not found", vendor.ID))
	}

	return nil
}

// Delete removes a vendor
func (r *vendorRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vendor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("vendor with ID %d not found", id))
	}

	return nil
}
