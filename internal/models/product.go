package models

import "github.com/shopspring/decimal"

// Product represents a billable service or good sold on a deal
type Product struct {
	ID             int64           `json:"id"`
	OrganizationID int64           `json:"organization_id"`
	Name           string          `json:"name"`
	DefaultPrice   decimal.Decimal `json:"default_price"`
	RequiresInstall bool           `json:"requires_install"`
	Active         bool            `json:"active"`
}

// ProductFilter holds filtering options for listing products
type ProductFilter struct {
	OrganizationID int64
	ActiveOnly     bool
	Page           int
	PageSize       int
}

// Validate performs basic validation on product data
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrInvalidInput("name is required")
	}
	if p.OrganizationID <= 0 {
		return ErrInvalidInput("organization_id is required")
	}
	if p.DefaultPrice.IsNegative() {
		return ErrInvalidInput("default_price cannot be negative")
	}
	return nil
}
