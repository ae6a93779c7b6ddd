package models

// Dropdown option kinds served by the option loader
const (
	OptionKindVendor      = "vendors"
	OptionKindProduct     = "products"
	OptionKindSalesperson = "salespeople"
	OptionKindAdvisor     = "advisors"
	OptionKindTechnician  = "technicians"
)

// Option is one entry of a dropdown source: an id, a display label and
// whatever metadata the form needs to prefill dependent fields.
type Option struct {
	ID       int64             `json:"id"`
	Label    string            `json:"label"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// OptionFilter scopes an option load
type OptionFilter struct {
	OrganizationID int64
	ActiveOnly     bool
}

// IsValidOptionKind checks if the option kind is valid
func IsValidOptionKind(kind string) bool {
	switch kind {
	case OptionKindVendor, OptionKindProduct, OptionKindSalesperson, OptionKindAdvisor, OptionKindTechnician:
		return true
	default:
		return false
	}
}

// AllOptionKinds lists every kind the wizard loads on open
func AllOptionKinds() []string {
	return []string{
		OptionKindVendor,
		OptionKindProduct,
		OptionKindSalesperson,
		OptionKindAdvisor,
		OptionKindTechnician,
	}
}
