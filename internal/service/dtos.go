package service

import (
	"net/mail"
	"strings"
	"time"

	"github.com/northpoint-auto/dealdesk-backend/internal/dealcheck"
	"github.com/northpoint-auto/dealdesk-backend/internal/models"
)

// SaveDealRequest carries the wizard's draft to a create or update call
type SaveDealRequest struct {
	Customer  models.CustomerDraft `json:"customer"`
	LineItems []models.LineItem    `json:"line_items"`
	Status    string               `json:"status,omitempty"`
}

// Validate enforces the customer-step rules and the full line-item rule set
func (r *SaveDealRequest) Validate() error {
	if strings.TrimSpace(r.Customer.CustomerName) == "" {
		return models.ErrInvalidInput("Customer name is required")
	}
	if strings.TrimSpace(r.Customer.JobNumber) == "" {
		return models.ErrInvalidInput("Job number is required")
	}
	if r.Customer.OrganizationID <= 0 {
		return models.ErrInvalidInput("Organization context is required")
	}
	if r.Customer.CustomerEmail != "" {
		if _, err := mail.ParseAddress(r.Customer.CustomerEmail); err != nil {
			return models.ErrInvalidInput("Customer email is not a valid address")
		}
	}
	if r.Customer.VIN != "" && !models.IsValidVIN(r.Customer.VIN) {
		return models.ErrInvalidInput("VIN must be 17 characters (letters I, O, Q not allowed)")
	}
	if !r.Customer.DealDate.IsZero() && r.Customer.DealDate.After(endOfToday()) {
		return models.ErrInvalidInput("Deal date cannot be in the future")
	}
	if r.Status != "" && !models.IsValidDealStatus(r.Status) {
		return models.ErrInvalidInput("Invalid deal status")
	}

	if msg := dealcheck.CheckWithError(r.LineItems); msg != "" {
		return models.ErrInvalidInput(msg)
	}

	for i := range r.LineItems {
		li := &r.LineItems[i]
		if li.IsOffSite && li.VendorID == nil {
			return models.ErrInvalidInput("Off-site line items require a vendor")
		}
	}

	return nil
}

func endOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
}

// DealListResult represents paginated deal list results
type DealListResult struct {
	Data       []*models.Deal          `json:"data"`
	Pagination models.PaginationResult `json:"pagination"`
}

// VINCheckResult reports a VIN uniqueness lookup. Verified is false when the
// collaborator could not be reached; an unverified VIN never blocks a save.
type VINCheckResult struct {
	VIN      string `json:"vin"`
	Unique   bool   `json:"unique"`
	Verified bool   `json:"verified"`
}

// ConflictResult describes one scheduling conflict with enough detail to
// render a warning to the user
type ConflictResult struct {
	BookingID    int64  `json:"booking_id"`
	CustomerName string `json:"customer_name"`
	JobNumber    string `json:"job_number"`
	TimeRange    string `json:"time_range"`
}

// SaveBookingRequest carries a booking create or reschedule. A detected
// conflict only blocks the save until the caller repeats the request with
// AcknowledgeConflict set.
type SaveBookingRequest struct {
	VendorID            int64     `json:"vendor_id"`
	DealID              int64     `json:"deal_id,omitempty"`
	LineItemID          *int64    `json:"line_item_id,omitempty"`
	CustomerName        string    `json:"customer_name"`
	JobNumber           string    `json:"job_number"`
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	AcknowledgeConflict bool      `json:"acknowledge_conflict,omitempty"`
}

// Validate performs validation on the booking request
func (r *SaveBookingRequest) Validate() error {
	booking := models.Booking{
		VendorID:  r.VendorID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}
	return booking.Validate()
}

// NotificationListResult represents paginated notification list results
type NotificationListResult struct {
	Data       []*models.VendorNotification `json:"data"`
	Pagination models.PaginationResult      `json:"pagination"`
}
