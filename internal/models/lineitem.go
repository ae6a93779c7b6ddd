package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one billable/service unit within a deal. Until the deal is
// saved the item exists only in form state and is addressed by LocalID; on
// save the persisted ID replaces it.
type LineItem struct {
	ID                 int64            `json:"id,omitempty"`
	LocalID            string           `json:"local_id"`
	DealID             int64            `json:"deal_id,omitempty"`
	ProductID          *int64           `json:"product_id"`
	UnitPrice          *decimal.Decimal `json:"unit_price"`
	Quantity           int              `json:"quantity"`
	RequiresScheduling bool             `json:"requires_scheduling"`
	DateScheduled      *time.Time       `json:"date_scheduled,omitempty"`
	ScheduledStartTime string           `json:"scheduled_start_time,omitempty"` // "HH:MM"
	ScheduledEndTime   string           `json:"scheduled_end_time,omitempty"`   // "HH:MM"
	NoScheduleReason   string           `json:"no_schedule_reason,omitempty"`
	IsOffSite          bool             `json:"is_off_site"`
	VendorID           *int64           `json:"vendor_id,omitempty"`
}

// NewLineItem returns a blank form-local item with one unit
func NewLineItem() LineItem {
	return LineItem{
		LocalID:  uuid.NewString(),
		Quantity: 1,
	}
}

// SetRequiresScheduling toggles the scheduling mode and clears whichever
// paired field the new mode makes irrelevant, so a saved item never carries
// both a scheduled date and a no-schedule reason.
func (li *LineItem) SetRequiresScheduling(required bool) {
	li.RequiresScheduling = required
	if required {
		li.NoScheduleReason = ""
	} else {
		li.DateScheduled = nil
		li.ScheduledStartTime = ""
		li.ScheduledEndTime = ""
	}
}

// ExtendedTotal is the line's contribution on the line-item edit surface
// (unit price times quantity). The wizard total deliberately ignores
// quantity; see Deal.WizardTotal.
func (li *LineItem) ExtendedTotal() decimal.Decimal {
	if li.UnitPrice == nil {
		return decimal.Zero
	}
	qty := li.Quantity
	if qty < 1 {
		qty = 1
	}
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
}
