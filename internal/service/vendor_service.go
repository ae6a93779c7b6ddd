package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/repository"
)

// VendorService handles vendor admin logic
type VendorService interface {
	Create(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error)
	GetByID(ctx context.Context, id int64) (*models.Vendor, error)
	List(ctx context.Context, filter models.VendorFilter) ([]*models.Vendor, models.PaginationResult, error)
	Update(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error)
	Delete(ctx context.Context, id int64) error
}

type vendorService struct {
	vendorRepo repository.VendorRepository
	options    OptionService
	logger     *slog.Logger
}

// NewVendorService creates a new vendor service
func NewVendorService(vendorRepo repository.VendorRepository, options OptionService, logger *slog.Logger) VendorService {
	return &vendorService{
		vendorRepo: vendorRepo,
		options:    options,
		logger:     logger,
	}
}

// Create creates a new vendor and drops the vendor dropdown cache
func (s *vendorService) Create(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error) {
	if err := vendor.Validate(); err != nil {
		return nil, err
	}

	if err := s.vendorRepo.Create(ctx, vendor); err != nil {
		s.logger.Error("failed to create vendor",
			slog.String("name", vendor.Name),
			slog.String("error", err.Error()),
		)
		return nil, models.ClassifyError(err)
	}

	s.options.Invalidate(ctx, models.OptionKindVendor, vendor.OrganizationID)

	s.logger.Info("vendor created",
		slog.Int64("vendor_id", vendor.ID),
		slog.String("name", vendor.Name),
	)

	return vendor, nil
}

// GetByID retrieves a vendor by ID
func (s *vendorService) GetByID(ctx context.Context, id int64) (*models.Vendor, error) {
	return s.vendorRepo.GetByID(ctx, id)
}

// List retrieves vendors with pagination
func (s *vendorService) List(ctx context.Context, filter models.VendorFilter) ([]*models.Vendor, models.PaginationResult, error) {
	vendors, totalCount, err := s.vendorRepo.List(ctx, filter)
	if err != nil {
		return nil, models.PaginationResult{}, fmt.Errorf("failed to list vendors: %w", err)
	}

	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)
	pagination := models.NewPaginationResult(filter.Page, filter.PageSize, totalCount)

	return vendors, pagination, nil
}

// Update updates an existing vendor and drops the vendor dropdown cache
func (s *vendorService) Update(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error) {
	if err := vendor.Validate(); err != nil {
		return nil, err
	}

	if err := s.vendorRepo.Update(ctx, vendor); err != nil {
		s.logger.Error("failed to update vendor",
			slog.Int64("vendor_id", vendor.ID),
			slog.String("error", err.Error()),
		)
		return nil, models.ClassifyError(err)
	}

	s.options.Invalidate(ctx, models.OptionKindVendor, vendor.OrganizationID)

	return vendor, nil
}

// Delete removes a vendor
func (s *vendorService) Delete(ctx context.Context, id int64) error {
	vendor, err := s.vendorRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.vendorRepo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete vendor",
			slog.Int64("vendor_id", id),
			slog.String("error", err.Error()),
		)
		return models.ClassifyError(err)
	}

	s.options.Invalidate(ctx, models.OptionKindVendor, vendor.OrganizationID)

	s.logger.Info("vendor deleted", slog.Int64("vendor_id", id))
	return nil
}
