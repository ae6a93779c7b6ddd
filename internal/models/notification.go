package models

import "time"

// Vendor notification status constants
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// VendorNotification is a dispatch message owed to a vendor after a deal
// with an off-site line item is saved.
type VendorNotification struct {
	ID         int64     `json:"id"`
	DealID     int64     `json:"deal_id"`
	VendorID   int64     `json:"vendor_id"`
	LineItemID int64     `json:"line_item_id"`
	Status     string    `json:"status"`
	Content    string    `json:"content"`
	LastError  *string   `json:"last_error,omitempty"`
	RetryCount int       `json:"retry_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NotificationFilter holds filtering options for listing notifications
type NotificationFilter struct {
	DealID   int64
	VendorID int64
	Status   string
	Page     int
	PageSize int
}

// DispatchJob is the queue payload pointing at one pending notification
type DispatchJob struct {
	NotificationID int64 `json:"notification_id"`
}

// IsValidNotificationStatus checks if the notification status is valid
func IsValidNotificationStatus(status string) bool {
	switch status {
	case NotificationStatusPending, NotificationStatusSent, NotificationStatusFailed:
		return true
	default:
		return false
	}
}

// CanRetry checks if a failed notification has retry budget left
func (n *VendorNotification) CanRetry(maxRetries int) bool {
	return n.Status == NotificationStatusFailed && n.RetryCount < maxRetries
}
