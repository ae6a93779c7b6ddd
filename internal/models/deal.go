package models

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Deal status constants
const (
	DealStatusOpen      = "open"
	DealStatusScheduled = "scheduled"
	DealStatusCompleted = "completed"
	DealStatusCancelled = "cancelled"
)

// CustomerDraft carries the customer identity and deal metadata captured on
// step 1 of the wizard.
type CustomerDraft struct {
	CustomerName   string     `json:"customer_name"`
	CustomerEmail  string     `json:"customer_email,omitempty"`
	CustomerPhone  string     `json:"customer_phone,omitempty"`
	DealDate       time.Time  `json:"deal_date"`
	JobNumber      string     `json:"job_number"`
	VIN            string     `json:"vin,omitempty"`
	VehicleID      *int64     `json:"vehicle_id,omitempty"`
	OrganizationID int64      `json:"organization_id"`
	VendorID       *int64     `json:"vendor_id,omitempty"`
	SalespersonID  *int64     `json:"salesperson_id,omitempty"`
	AdvisorID      *int64     `json:"advisor_id,omitempty"`
	LoanerRequired bool       `json:"loaner_required"`
	LoanerReturnBy *time.Time `json:"loaner_return_by,omitempty"`
}

// Deal is the persisted work order combining customer info and line items
type Deal struct {
	ID        int64      `json:"id"`
	CustomerDraft
	Status    string     `json:"status"`
	LineItems []LineItem `json:"line_items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DealFilter holds filtering options for listing deals
type DealFilter struct {
	OrganizationID int64
	Status         string
	JobNumber      string
	Page           int
	PageSize       int
}

var vinPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// IsValidVIN reports whether v is a well-formed 17-character VIN
// (alphanumeric, excluding I, O and Q)
func IsValidVIN(v string) bool {
	return vinPattern.MatchString(v)
}

// IsValidDealStatus checks if the deal status is valid
func IsValidDealStatus(status string) bool {
	switch status {
	case DealStatusOpen, DealStatusScheduled, DealStatusCompleted, DealStatusCancelled:
		return true
	default:
		return false
	}
}

// WizardTotal sums the unit prices of all line items. Quantity is ignored
// on the wizard surface; the line-item edit surface uses ExtendedTotal.
func (d *Deal) WizardTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range d.LineItems {
		if d.LineItems[i].UnitPrice != nil {
			total = total.Add(*d.LineItems[i].UnitPrice)
		}
	}
	return total
}
