package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
)

// BookingRepository defines the interface for vendor booking data access
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id int64) (*models.Booking, error)
	// ListForVendorInRange returns bookings for the vendor whose half-open
	// interval overlaps [rangeStart, rangeEnd), ordered by start time.
	// excludeBookingID removes the booking being edited (0 excludes none).
	ListForVendorInRange(ctx context.Context, vendorID int64, rangeStart, rangeEnd time.Time, excludeBookingID int64) ([]*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id int64) error
	// DeleteForDeal removes every booking recorded for the deal, used when
	// a rewrite replaces the deal's line items wholesale
	DeleteForDeal(ctx context.Context, dealID int64) error
}

// bookingRepository implements BookingRepository using PostgreSQL
type bookingRepository struct {
	db *sql.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// Create inserts a new booking
func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (vendor_id, deal_id, line_item_id, customer_name, job_number, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRowContext(
		ctx,
		query,
		booking.VendorID,
		booking.DealID,
		booking.LineItemID,
		booking.CustomerName,
		booking.JobNumber,
		booking.StartTime,
		booking.EndTime,
	).Scan(&booking.ID)

	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := `
		SELECT id, vendor_id, deal_id, line_item_id, customer_name, job_number, start_time, end_time
		FROM bookings
		WHERE id = $1`

	booking := &models.Booking{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.VendorID,
		&booking.DealID,
		&booking.LineItemID,
		&booking.CustomerName,
		&booking.JobNumber,
		&booking.StartTime,
		&booking.EndTime,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("booking with ID %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// ListForVendorInRange returns the vendor's bookings overlapping the range
func (r *bookingRepository) ListForVendorInRange(ctx context.Context, vendorID int64, rangeStart, rangeEnd time.Time, excludeBookingID int64) ([]*models.Booking, error) {
	// Half-open overlap: touching endpoints are not an overlap
	query := `
		SELECT id, vendor_id, deal_id, line_item_id, customer_name, job_number, start_time, end_time
		FROM bookings
		WHERE vendor_id = $1
		  AND start_time < $3
		  AND end_time > $2
		  AND id <> $4
		ORDER BY start_time`

	rows, err := r.db.QueryContext(ctx, query, vendorID, rangeStart, rangeEnd, excludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []*models.Booking{}
	for rows.Next() {
		booking := &models.Booking{}
		err := rows.Scan(
			&booking.ID,
			&booking.VendorID,
			&booking.DealID,
			&booking.LineItemID,
			&booking.CustomerName,
			&booking.JobNumber,
			&booking.StartTime,
			&booking.EndTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}

// Update rewrites a booking's window and labels
func (r *bookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	query := `
		UPDATE bookings
		SET vendor_id = $1, customer_name = $2, job_number = $3, start_time = $4, end_time = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(
		ctx,
		query,
		booking.VendorID,
		booking.CustomerName,
		booking.JobNumber,
		booking.StartTime,
		booking.EndTime,
		booking.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("booking with ID %d not found", booking.ID))
	}

	return nil
}

// Delete removes a booking
func (r *bookingRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("booking with ID %d not found", id))
	}

	return nil
}

// DeleteForDeal removes all bookings tied to a deal. Zero rows is not an
// error: most deals have no off-site bookings.
func (r *bookingRepository) DeleteForDeal(ctx context.Context, dealID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE deal_id = $1`, dealID); err != nil {
		return fmt.Errorf("failed to delete bookings for deal: %w", err)
	}
	return nil
}
