package models

import "time"

// Booking is a vendor's committed time window for one scheduled line item
type Booking struct {
	ID           int64     `json:"id"`
	VendorID     int64     `json:"vendor_id"`
	DealID       int64     `json:"deal_id"`
	LineItemID   *int64    `json:"line_item_id,omitempty"`
	CustomerName string    `json:"customer_name"`
	JobNumber    string    `json:"job_number"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// Overlaps reports whether the booking's half-open interval [StartTime,
// EndTime) intersects [start, end). Touching endpoints do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// Validate performs basic validation on booking data
func (b *Booking) Validate() error {
	if b.VendorID <= 0 {
		return ErrInvalidInput("vendor_id is required")
	}
	if b.StartTime.IsZero() || b.EndTime.IsZero() {
		return ErrInvalidInput("start_time and end_time are required")
	}
	if !b.StartTime.Before(b.EndTime) {
		return ErrInvalidInput("start_time must be before end_time")
	}
	return nil
}
