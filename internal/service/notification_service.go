package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/repository"
)

// NotificationService exposes vendor dispatch notifications to the admin
// surface (read-only; the worker owns status transitions)
type NotificationService interface {
	GetByID(ctx context.Context, id int64) (*models.VendorNotification, error)
	List(ctx context.Context, filter models.NotificationFilter) (*NotificationListResult, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	logger           *slog.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo repository.NotificationRepository, logger *slog.Logger) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// GetByID retrieves a notification by ID
func (s *notificationService) GetByID(ctx context.Context, id int64) (*models.VendorNotification, error) {
	return s.notificationRepo.GetByID(ctx, id)
}

// List retrieves notifications with pagination
func (s *notificationService) List(ctx context.Context, filter models.NotificationFilter) (*NotificationListResult, error) {
	notifications, totalCount, err := s.notificationRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)
	pagination := models.NewPaginationResult(filter.Page, filter.PageSize, totalCount)

	return &NotificationListResult{
		Data:       notifications,
		Pagination: pagination,
	}, nil
}
