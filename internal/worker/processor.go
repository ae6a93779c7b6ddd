package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/repository"
)

// DispatchProcessor processes vendor dispatch jobs from the queue
type DispatchProcessor struct {
	notificationRepo repository.NotificationRepository
	vendorRepo       repository.VendorRepository
	notifier         VendorNotifier
	maxRetries       int
	logger           *slog.Logger
}

// NewDispatchProcessor creates a new dispatch processor
func NewDispatchProcessor(
	notificationRepo repository.NotificationRepository,
	vendorRepo repository.VendorRepository,
	notifier VendorNotifier,
	maxRetries int,
	logger *slog.Logger,
) *DispatchProcessor {
	return &DispatchProcessor{
		notificationRepo: notificationRepo,
		vendorRepo:       vendorRepo,
		notifier:         notifier,
		maxRetries:       maxRetries,
		logger:           logger,
	}
}

// Process handles a single dispatch job
func (p *DispatchProcessor) Process(ctx context.Context, job *models.DispatchJob) error {
	notification, err := p.notificationRepo.GetByID(ctx, job.NotificationID)
	if err != nil {
		p.logger.Error("failed to fetch notification",
			slog.Int64("notification_id", job.NotificationID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to fetch notification: %w", err)
	}

	if notification.Status == models.NotificationStatusSent {
		// Duplicate job, nothing to do
		return nil
	}

	vendor, err := p.vendorRepo.GetByID(ctx, notification.VendorID)
	if err != nil {
		p.logger.Error("failed to fetch vendor",
			slog.Int64("vendor_id", notification.VendorID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to fetch vendor: %w", err)
	}

	p.logger.Info("dispatching vendor notification",
		slog.Int64("notification_id", notification.ID),
		slog.Int64("deal_id", notification.DealID),
		slog.String("vendor", vendor.Name),
	)

	if err := p.notifier.Notify(ctx, vendor.Phone, vendor.Email, notification.Content); err != nil {
		p.logger.Warn("vendor notification failed",
			slog.Int64("notification_id", notification.ID),
			slog.Int("retry_count", notification.RetryCount),
			slog.String("error", err.Error()),
		)
		return p.handleFailure(ctx, notification, err)
	}

	if err := p.notificationRepo.UpdateStatus(ctx, notification.ID, models.NotificationStatusSent, nil); err != nil {
		p.logger.Error("failed to mark notification sent",
			slog.Int64("notification_id", notification.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to update notification status: %w", err)
	}

	p.logger.Info("vendor notification sent",
		slog.Int64("notification_id", notification.ID),
		slog.String("vendor", vendor.Name),
	)

	return nil
}

// handleFailure records the failure and decides between retry budget and
// permanent failure
func (p *DispatchProcessor) handleFailure(ctx context.Context, notification *models.VendorNotification, notifyErr error) error {
	if err := p.notificationRepo.IncrementRetryCount(ctx, notification.ID); err != nil {
		p.logger.Error("failed to increment retry count",
			slog.Int64("notification_id", notification.ID),
			slog.String("error", err.Error()),
		)
		return err
	}

	notification.RetryCount++
	notification.Status = models.NotificationStatusFailed

	if !notification.CanRetry(p.maxRetries) {
		p.logger.Error("notification permanently failed",
			slog.Int64("notification_id", notification.ID),
			slog.Int("retry_count", notification.RetryCount),
			slog.Int("max_retries", p.maxRetries),
		)

		errMsg := fmt.Sprintf("max retries exceeded: %s", notifyErr.Error())
		if err := p.notificationRepo.UpdateStatus(ctx, notification.ID, models.NotificationStatusFailed, &errMsg); err != nil {
			p.logger.Error("failed to mark notification failed",
				slog.Int64("notification_id", notification.ID),
				slog.String("error", err.Error()),
			)
			return err
		}

		// Job processed, albeit unsuccessfully
		return nil
	}

	errMsg := notifyErr.Error()
	if err := p.notificationRepo.UpdateStatus(ctx, notification.ID, models.NotificationStatusFailed, &errMsg); err != nil {
		p.logger.Error("failed to update notification status",
			slog.Int64("notification_id", notification.ID),
			slog.String("error", err.Error()),
		)
		return err
	}

	return fmt.Errorf("notify failed, retry %d/%d: %w", notification.RetryCount, p.maxRetries, notifyErr)
}
