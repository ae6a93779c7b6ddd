package models

// Staff role constants
const (
	StaffRoleSalesperson = "salesperson"
	StaffRoleAdvisor     = "advisor"
	StaffRoleTechnician  = "technician"
)

// Staff represents a dealership employee assignable to a deal
type Staff struct {
	ID             int64  `json:"id"`
	OrganizationID int64  `json:"organization_id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Role           string `json:"role"`
	Active         bool   `json:"active"`
}

// StaffFilter holds filtering options for listing staff
type StaffFilter struct {
	OrganizationID int64
	Role           string
	ActiveOnly     bool
	Page           int
	PageSize       int
}

// FullName returns the display name for dropdowns
func (s *Staff) FullName() string {
	if s.FirstName == "" {
		return s.LastName
	}
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// IsValidStaffRole checks if the role is valid
func IsValidStaffRole(role string) bool {
	switch role {
	case StaffRoleSalesperson, StaffRoleAdvisor, StaffRoleTechnician:
		return true
	default:
		return false
	}
}

// Validate performs basic validation on staff data
func (s *Staff) Validate() error {
	if s.FirstName == "" && s.LastName == "" {
		return ErrInvalidInput("name is required")
	}
	if s.OrganizationID <= 0 {
		return ErrInvalidInput("organization_id is required")
	}
	if s.Role != "" && !IsValidStaffRole(s.Role) {
		return ErrInvalidInput("invalid role (must be 'salesperson', 'advisor' or 'technician')")
	}
	return nil
}
