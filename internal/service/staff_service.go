package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/repository"
)

// StaffService handles staff admin logic
type StaffService interface {
	Create(ctx context.Context, staff *models.Staff) (*models.Staff, error)
	GetByID(ctx context.Context, id int64) (*models.Staff, error)
	List(ctx context.Context, filter models.StaffFilter) ([]*models.Staff, models.PaginationResult, error)
	Update(ctx context.Context, staff *models.Staff) (*models.Staff, error)
	Delete(ctx context.Context, id int64) error
}

type staffService struct {
	staffRepo repository.StaffRepository
	options   OptionService
	logger    *slog.Logger
}

// NewStaffService creates a new staff service
func NewStaffService(staffRepo repository.StaffRepository, options OptionService, logger *slog.Logger) StaffService {
	return &staffService{
		staffRepo: staffRepo,
		options:   options,
		logger:    logger,
	}
}

// roleOptionKind maps a staff role to the dropdown cache it feeds
func roleOptionKind(role string) string {
	switch role {
	case models.StaffRoleSalesperson:
		return models.OptionKindSalesperson
	case models.StaffRoleAdvisor:
		return models.OptionKindAdvisor
	default:
		return models.OptionKindTechnician
	}
}

// Create creates a new staff member and drops the matching dropdown cache
func (s *staffService) Create(ctx context.Context, staff *models.Staff) (*models.Staff, error) {
	if err := staff.Validate(); err != nil {
		return nil, err
	}

	if err := s.staffRepo.Create(ctx, staff); err != nil {
		s.logger.Error("failed to create staff member",
			slog.String("name", staff.FullName()),
			slog.String("error", err.Error()),
		)
		return nil, models.ClassifyError(err)
	}

	s.options.Invalidate(ctx, roleOptionKind(staff.Role), staff.OrganizationID)

	s.logger.Info("staff member created",
		slog.Int64("staff_id", staff.ID),
		slog.String("name", staff.FullName()),
		slog.String("role", staff.Role),
	)

	return staff, nil
}

// GetByID retrieves a staff member by ID
func (s *staffService) GetByID(ctx context.Context, id int64) (*models.Staff, error) {
	return s.staffRepo.GetByID(ctx, id)
}

// List retrieves staff with pagination
func (s *staffService) List(ctx context.Context, filter models.StaffFilter) ([]*models.Staff, models.PaginationResult, error) {
	members, totalCount, err := s.staffRepo.List(ctx, filter)
	if err != nil {
		return nil, models.PaginationResult{}, fmt.Errorf("failed to list staff: %w", err)
	}

	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)
	pagination := models.NewPaginationResult(filter.Page, filter.PageSize, totalCount)

	return members, pagination, nil
}

// Update updates an existing staff member and drops the matching dropdown cache
func (s *staffService) Update(ctx context.Context, staff *models.Staff) (*models.Staff, error) {
	if err := staff.Validate(); err != nil {
		return nil, err
	}

	if err := s.staffRepo.Update(ctx, staff); err != nil {
		s.logger.Error("failed to update staff member",
			slog.Int64("staff_id", staff.ID),
			slog.String("error", err.Error()),
		)
		return nil, models.ClassifyError(err)
	}

	s.options.Invalidate(ctx, roleOptionKind(staff.Role), staff.OrganizationID)

	return staff, nil
}

// Delete removes a staff member
func (s *staffService) Delete(ctx context.Context, id int64) error {
	staff, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.staffRepo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete staff member",
			slog.Int64("staff_id", id),
			slog.String("error", err.Error()),
		)
		return models.ClassifyError(err)
	}

	s.options.Invalidate(ctx, roleOptionKind(staff.Role), staff.OrganizationID)

	s.logger.Info("staff member deleted", slog.Int64("staff_id", id))
	return nil
}
