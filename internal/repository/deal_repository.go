package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
)

// DealRepository defines the interface for deal data access
type DealRepository interface {
	Create(ctx context.Context, deal *models.Deal) error
	GetByID(ctx context.Context, id int64) (*models.Deal, error)
	List(ctx context.Context, filter models.DealFilter) ([]*models.Deal, int64, error)
	Update(ctx context.Context, deal *models.Deal) error
	Delete(ctx context.Context, id int64) error
	JobNumberExists(ctx context.Context, orgID int64, jobNumber string, excludeDealID int64) (bool, error)
}

// dealRepository implements DealRepository using PostgreSQL
type dealRepository struct {
	db *sql.DB
}

// NewDealRepository creates a new deal repository
func NewDealRepository(db *sql.DB) DealRepository {
	return &dealRepository{db: db}
}

// Create inserts a deal and its line items in one transaction
func (r *dealRepository) Create(ctx context.Context, deal *models.Deal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO deals (
			organization_id, customer_name, customer_email, customer_phone,
			deal_date, job_number, vin, vehicle_id, vendor_id,
			salesperson_id, advisor_id, loaner_required, loaner_return_by, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(
		ctx,
		query,
		deal.OrganizationID,
		deal.CustomerName,
		deal.CustomerEmail,
		deal.CustomerPhone,
		deal.DealDate,
		deal.JobNumber,
		deal.VIN,
		deal.VehicleID,
		deal.VendorID,
		deal.SalespersonID,
		deal.AdvisorID,
		deal.LoanerRequired,
		deal.LoanerReturnBy,
		deal.Status,
	).Scan(&deal.ID, &deal.CreatedAt, &deal.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}

	if err := r.insertLineItems(ctx, tx, deal); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deal: %w", err)
	}

	return nil
}

// GetByID retrieves a deal and its line items
func (r *dealRepository) GetByID(ctx context.Context, id int64) (*models.Deal, error) {
	query := `
		SELECT id, organization_id, customer_name, customer_email, customer_phone,
		       deal_date, job_number, vin, vehicle_id, vendor_id,
		       salesperson_id, advisor_id, loaner_required, loaner_return_by,
		       status, created_at, updated_at
		FROM deals
		WHERE id = $1`

	deal := &models.Deal{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&deal.ID,
		&deal.OrganizationID,
		&deal.CustomerName,
		&deal.CustomerEmail,
		&deal.CustomerPhone,
		&deal.DealDate,
		&deal.JobNumber,
		&deal.VIN,
		&deal.VehicleID,
		&deal.VendorID,
		&deal.SalespersonID,
		&deal.AdvisorID,
		&deal.LoanerRequired,
		&deal.LoanerReturnBy,
		&deal.Status,
		&deal.CreatedAt,
		&deal.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("deal with ID %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	items, err := r.lineItemsForDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	deal.LineItems = items

	return deal, nil
}

// List retrieves deals with pagination and filtering. Line items are not
// loaded for list rows.
func (r *dealRepository) List(ctx context.Context, filter models.DealFilter) ([]*models.Deal, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	query := `
		SELECT id, organization_id, customer_name, customer_email, customer_phone,
		       deal_date, job_number, vin, vehicle_id, vendor_id,
		       salesperson_id, advisor_id, loaner_required, loaner_return_by,
		       status, created_at, updated_at
		FROM deals
		WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM deals WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.OrganizationID > 0 {
		query += fmt.Sprintf(" AND organization_id = $%d", argPos)
		countQuery += fmt.Sprintf(" AND organization_id = $%d", argPos)
		args = append(args, filter.OrganizationID)
		argPos++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		countQuery += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}

	if filter.JobNumber != "" {
		query += fmt.Sprintf(" AND job_number = $%d", argPos)
		countQuery += fmt.Sprintf(" AND job_number = $%d", argPos)
		args = append(args, filter.JobNumber)
		argPos++
	}

	var totalCount int64
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count deals: %w", err)
	}

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list deals: %w", err)
	}
	defer rows.Close()

	deals := []*models.Deal{}
	for rows.Next() {
		deal := &models.Deal{}
		err := rows.Scan(
			&deal.ID,
			&deal.OrganizationID,
			&deal.CustomerName,
			&deal.CustomerEmail,
			&deal.CustomerPhone,
			&deal.DealDate,
			&deal.JobNumber,
			&deal.VIN,
			&deal.VehicleID,
			&deal.VendorID,
			&deal.SalespersonID,
			&deal.AdvisorID,
			&deal.LoanerRequired,
			&deal.LoanerReturnBy,
			&deal.Status,
			&deal.CreatedAt,
			&deal.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan deal: %w", err)
		}
		deals = append(deals, deal)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating deals: %w", err)
	}

	return deals, totalCount, nil
}

// Update rewrites the deal row and replaces its line items wholesale
func (r *dealRepository) Update(ctx context.Context, deal *models.Deal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE deals
		SET customer_name = $1, customer_email = $2, customer_phone = $3,
		    deal_date = $4, job_number = $5, vin = $6, vehicle_id = $7,
		    vendor_id = $8, salesperson_id = $9, advisor_id = $10,
		    loaner_required = $11, loaner_return_by = $12, status = $13,
		    updated_at = NOW()
		WHERE id = $14`

	result, err := tx.ExecContext(
		ctx,
		query,
		deal.CustomerName,
		deal.CustomerEmail,
		deal.CustomerPhone,
		deal.DealDate,
		deal.JobNumber,
		deal.VIN,
		deal.VehicleID,
		deal.VendorID,
		deal.SalespersonID,
		deal.AdvisorID,
		deal.LoanerRequired,
		deal.LoanerReturnBy,
		deal.Status,
		deal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update deal: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("deal with ID %d not found", deal.ID))
	}

	// Wholesale replace: the edit surface never diffs individual items
	if _, err := tx.ExecContext(ctx, `DELETE FROM line_items WHERE deal_id = $1`, deal.ID); err != nil {
		return fmt.Errorf("failed to clear line items: %w", err)
	}

	if err := r.insertLineItems(ctx, tx, deal); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deal update: %w", err)
	}

	return nil
}

// Delete removes a deal; line items cascade at the schema level
func (r *dealRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM deals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("deal with ID %d not found", id))
	}

	return nil
}

// JobNumberExists reports whether another deal in the organization already
// uses the job number
func (r *dealRepository) JobNumberExists(ctx context.Context, orgID int64, jobNumber string, excludeDealID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM deals
			WHERE organization_id = $1 AND job_number = $2 AND id <> $3
		)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, orgID, jobNumber, excludeDealID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check job number: %w", err)
	}

	return exists, nil
}

// insertLineItems writes the deal's items inside the caller's transaction,
// filling in persisted IDs as it goes
func (r *dealRepository) insertLineItems(ctx context.Context, tx *sql.Tx, deal *models.Deal) error {
	query := `
		INSERT INTO line_items (
			deal_id, product_id, unit_price, quantity, requires_scheduling,
			date_scheduled, scheduled_start_time, scheduled_end_time,
			no_schedule_reason, is_off_site, vendor_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	for i := range deal.LineItems {
		li := &deal.LineItems[i]
		err := tx.QueryRowContext(
			ctx,
			query,
			deal.ID,
			li.ProductID,
			li.UnitPrice,
			li.Quantity,
			li.RequiresScheduling,
			li.DateScheduled,
			nullableString(li.ScheduledStartTime),
			nullableString(li.ScheduledEndTime),
			nullableString(li.NoScheduleReason),
			li.IsOffSite,
			li.VendorID,
		).Scan(&li.ID)
		if err != nil {
			return fmt.Errorf("failed to insert line item %d: %w", i+1, err)
		}
		li.DealID = deal.ID
	}

	return nil
}

// lineItemsForDeal loads the deal's items in insertion order
func (r *dealRepository) lineItemsForDeal(ctx context.Context, dealID int64) ([]models.LineItem, error) {
	query := `
		SELECT id, deal_id, product_id, unit_price, quantity, requires_scheduling,
		       date_scheduled, scheduled_start_time, scheduled_end_time,
		       no_schedule_reason, is_off_site, vendor_id
		FROM line_items
		WHERE deal_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	defer rows.Close()

	items := []models.LineItem{}
	for rows.Next() {
		var li models.LineItem
		var startTime, endTime, reason sql.NullString
		err := rows.Scan(
			&li.ID,
			&li.DealID,
			&li.ProductID,
			&li.UnitPrice,
			&li.Quantity,
			&li.RequiresScheduling,
			&li.DateScheduled,
			&startTime,
			&endTime,
			&reason,
			&li.IsOffSite,
			&li.VendorID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		li.ScheduledStartTime = startTime.String
		li.ScheduledEndTime = endTime.String
		li.NoScheduleReason = reason.String
		items = append(items, li)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	return items, nil
}

// nullableString maps "" to SQL NULL
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
