package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
)

// NotificationRepository defines the interface for vendor notification data access
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*models.VendorNotification) error
	GetByID(ctx context.Context, id int64) (*models.VendorNotification, error)
	List(ctx context.Context, filter models.NotificationFilter) ([]*models.VendorNotification, int64, error)
	UpdateStatus(ctx context.Context, id int64, status string, lastError *string) error
	IncrementRetryCount(ctx context.Context, id int64) error
}

// notificationRepository implements NotificationRepository using PostgreSQL
type notificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// CreateBatch inserts pending notifications in one transaction
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*models.VendorNotification) error {
	if len(notifications) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO vendor_notifications (deal_id, vendor_id, line_item_id, status, content, retry_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	for _, n := range notifications {
		err := tx.QueryRowContext(
			ctx,
			query,
			n.DealID,
			n.VendorID,
			n.LineItemID,
			n.Status,
			n.Content,
			n.RetryCount,
		).Scan(&n.ID, &n.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit notifications: %w", err)
	}

	return nil
}

// GetByID retrieves a notification by ID
func (r *notificationRepository) GetByID(ctx context.Context, id int64) (*models.VendorNotification, error) {
	query := `
		SELECT id, deal_id, vendor_id, line_item_id, status, content, last_error, retry_count, created_at, updated_at
		FROM vendor_notifications
		WHERE id = $1`

	n := &models.VendorNotification{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID,
		&n.DealID,
		&n.VendorID,
		&n.LineItemID,
		&n.Status,
		&n.Content,
		&n.LastError,
		&n.RetryCount,
		&n.CreatedAt,
		&n.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("notification with ID %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return n, nil
}

// List retrieves notifications with pagination and filtering
func (r *notificationRepository) List(ctx context.Context, filter models.NotificationFilter) ([]*models.VendorNotification, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	query := `
		SELECT id, deal_id, vendor_id, line_item_id, status, content, last_error, retry_count, created_at, updated_at
		FROM vendor_notifications
		WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM vendor_notifications WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.DealID > 0 {
		query += fmt.Sprintf(" AND deal_id = $%d", argPos)
		countQuery += fmt.Sprintf(" AND deal_id = $%d", argPos)
		args = append(args, filter.DealID)
		argPos++
	}

	if filter.VendorID > 0 {
		query += fmt.Sprintf(" AND vendor_id = $%d", argPos)
		countQuery += fmt.Sprintf(" AND vendor_id = $%d", argPos)
		args = append(args, filter.VendorID)
		argPos++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		countQuery += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}

	var totalCount int64
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []*models.VendorNotification{}
	for rows.Next() {
		n := &models.VendorNotification{}
		err := rows.Scan(
			&n.ID,
			&n.DealID,
			&n.VendorID,
			&n.LineItemID,
			&n.Status,
			&n.Content,
			&n.LastError,
			&n.RetryCount,
			&n.CreatedAt,
			&n.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, totalCount, nil
}

// UpdateStatus updates the status and optional error text of a notification
func (r *notificationRepository) UpdateStatus(ctx context.Context, id int64, status string, lastError *string) error {
	query := `
		UPDATE vendor_notifications
		SET status = $1, last_error = $2, updated_at = NOW()
		WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, lastError, id)
	if err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("notification with ID %d not found", id))
	}

	return nil
}

// IncrementRetryCount bumps the retry counter
func (r *notificationRepository) IncrementRetryCount(ctx context.Context, id int64) error {
	query := `
		UPDATE vendor_notifications
		SET retry_count = retry_count + 1, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment retry count: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("notification with ID %d not found", id))
	}

	return nil
}
