package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
)

// StaffRepository defines the interface for staff data access
type StaffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	GetByID(ctx context.Context, id int64) (*models.Staff, error)
	List(ctx context.Context, filter models.StaffFilter) ([]*models.Staff, int64, error)
	Update(ctx context.Context, staff *models.Staff) error
	Delete(ctx context.Context, id int64) error
}

// staffRepository implements StaffRepository using PostgreSQL
type staffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *sql.DB) StaffRepository {
	return &staffRepository{db: db}
}

// Create inserts a new staff member
func (r *staffRepository) Create(ctx context.Context, staff *models.Staff) error {
	query := `
		INSERT INTO staff (organization_id, first_name, last_name, role, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(
		ctx,
		query,
		staff.OrganizationID,
		staff.FirstName,
		staff.LastName,
		staff.Role,
		staff.Active,
	).Scan(&staff.ID)

	if err != nil {
		return fmt.Errorf("failed to create staff member: %w", err)
	}

	return nil
}

// GetByID retrieves a staff member by ID
func (r *staffRepository) GetByID(ctx context.Context, id int64) (*models.Staff, error) {
	query := `
		SELECT id, organization_id, first_name, last_name, role, active
		FROM staff
		WHERE id = $1`

	staff := &models.Staff{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&staff.ID,
		&staff.OrganizationID,
		&staff.FirstName,
		&staff.LastName,
		&staff.Role,
		&staff.Active,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("staff member with ID %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}

	return staff, nil
}

// List retrieves staff with pagination and filtering
func (r *staffRepository) List(ctx context.Context, filter models.StaffFilter) ([]*models.Staff, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	query := `
		SELECT id, organization_id, first_name, last_name, role, active
		FROM staff
		WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM staff WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.OrganizationID > 0 {
		query += fmt.Sprintf(" AND organization_id = $%d", argPos)
		countQuery += fmt.Sprintf(" AND organization_id = $%d", argPos)
		args = append(args, filter.OrganizationID)
		argPos++
	}

	if filter.Role != "" {
		query += fmt.Sprintf(" AND role = $%d", argPos)
		countQuery += fmt.Sprintf(" AND role = $%d", argPos)
		args = append(args, filter.Role)
		argPos++
	}

	if filter.ActiveOnly {
		query += " AND active = TRUE"
		countQuery += " AND active = TRUE"
	}

	var totalCount int64
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count staff: %w", err)
	}

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY last_name, first_name LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	members := []*models.Staff{}
	for rows.Next() {
		staff := &models.Staff{}
		err := rows.Scan(
			&staff.ID,
			&staff.OrganizationID,
			&staff.FirstName,
			&staff.LastName,
			&staff.Role,
			&staff.Active,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan staff member: %w", err)
		}
		members = append(members, staff)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating staff: %w", err)
	}

	return members, totalCount, nil
}

// Update updates an existing staff member
func (r *staffRepository) Update(ctx context.Context, staff *models.Staff) error {
	query := `
		UPDATE staff
		SET first_name = $1, last_name = $2, role = $3, active = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(
		ctx,
		query,
		staff.FirstName,
		staff.LastName,
		staff.Role,
		staff.Active,
		staff.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update staff member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("staff member with ID %d not found", staff.ID))
	}

	return nil
}

// Delete removes a staff member
func (r *staffRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete staff member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("staff member with ID %d not found", id))
	}

	return nil
}
