package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/northpoint-auto/dealdesk-backend/internal/format"
	"github.com/northpoint-auto/dealdesk-backend/internal/models"
)

// OptionRepository loads dropdown sources for the deal forms. Each kind maps
// to one query returning (id, label, metadata) rows.
type OptionRepository interface {
	LoadOptions(ctx context.Context, kind string, filter models.OptionFilter) ([]models.Option, error)
}

// optionRepository implements OptionRepository using PostgreSQL
type optionRepository struct {
	db *sql.DB
}

// NewOptionRepository creates a new option repository
func NewOptionRepository(db *sql.DB) OptionRepository {
	return &optionRepository{db: db}
}

// LoadOptions returns the ordered option list for one dropdown kind
func (r *optionRepository) LoadOptions(ctx context.Context, kind string, filter models.OptionFilter) ([]models.Option, error) {
	switch kind {
	case models.OptionKindVendor:
		return r.loadVendorOptions(ctx, filter)
	case models.OptionKindProduct:
		return r.loadProductOptions(ctx, filter)
	case models.OptionKindSalesperson:
		return r.loadStaffOptions(ctx, filter, models.StaffRoleSalesperson)
	case models.OptionKindAdvisor:
		return r.loadStaffOptions(ctx, filter, models.StaffRoleAdvisor)
	case models.OptionKindTechnician:
		return r.loadStaffOptions(ctx, filter, models.StaffRoleTechnician)
	default:
		return nil, models.ErrInvalidInput(fmt.Sprintf("unknown option kind: %s", kind))
	}
}

func (r *optionRepository) loadVendorOptions(ctx context.Context, filter models.OptionFilter) ([]models.Option, error) {
	query := `
		SELECT id, name, phone
		FROM vendors
		WHERE organization_id = $1 AND ($2 = FALSE OR active = TRUE)
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, filter.OrganizationID, filter.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor options: %w", err)
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		var phone sql.NullString
		if err := rows.Scan(&opt.ID, &opt.Label, &phone); err != nil {
			return nil, fmt.Errorf("failed to scan vendor option: %w", err)
		}
		if phone.String != "" {
			opt.Metadata = map[string]string{"phone": format.Phone(phone.String)}
		}
		options = append(options, opt)
	}

	return options, rows.Err()
}

func (r *optionRepository) loadProductOptions(ctx context.Context, filter models.OptionFilter) ([]models.Option, error) {
	query := `
		SELECT id, name, default_price::text, requires_install
		FROM products
		WHERE organization_id = $1 AND ($2 = FALSE OR active = TRUE)
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, filter.OrganizationID, filter.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to load product options: %w", err)
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		var price string
		var requiresInstall bool
		if err := rows.Scan(&opt.ID, &opt.Label, &price, &requiresInstall); err != nil {
			return nil, fmt.Errorf("failed to scan product option: %w", err)
		}
		opt.Metadata = map[string]string{
			"default_price":    price,
			"requires_install": fmt.Sprintf("%t", requiresInstall),
		}
		options = append(options, opt)
	}

	return options, rows.Err()
}

func (r *optionRepository) loadStaffOptions(ctx context.Context, filter models.OptionFilter, role string) ([]models.Option, error) {
	query := `
		SELECT id, TRIM(first_name || ' ' || last_name)
		FROM staff
		WHERE organization_id = $1 AND role = $2 AND ($3 = FALSE OR active = TRUE)
		ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, query, filter.OrganizationID, role, filter.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff options: %w", err)
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.Label); err != nil {
			return nil, fmt.Errorf("failed to scan staff option: %w", err)
		}
		options = append(options, opt)
	}

	return options, rows.Err()
}
