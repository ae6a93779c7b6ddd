package models

// Vendor represents an external vendor that fulfils off-site line items
type Vendor struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organization_id"`
	Name           string `json:"name"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	Active         bool   `json:"active"`
}

// VendorFilter holds filtering options for listing vendors
type VendorFilter struct {
	OrganizationID int64
	ActiveOnly     bool
	Page           int
	PageSize       int
}

// Validate performs basic validation on vendor data
func (v *Vendor) Validate() error {
	if v.Name == "" {
		return ErrInvalidInput("name is required")
	}
	if v.OrganizationID <= 0 {
		return ErrInvalidInput("organization_id is required")
	}
	return nil
}
