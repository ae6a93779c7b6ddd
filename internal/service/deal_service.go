package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/northpoint-auto/dealdesk-backend/internal/format"
	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/queue"
	"github.com/northpoint-auto/dealdesk-backend/internal/repository"
)

// DealService handles deal business logic
type DealService interface {
	Create(ctx context.Context, req *SaveDealRequest) (*models.Deal, error)
	GetByID(ctx context.Context, id int64) (*models.Deal, error)
	List(ctx context.Context, filter models.DealFilter) (*DealListResult, error)
	Update(ctx context.Context, id int64, req *SaveDealRequest) (*models.Deal, error)
	Delete(ctx context.Context, id int64) error
	CheckVINUnique(ctx context.Context, vin string, excludeVehicleID int64) VINCheckResult
}

type dealService struct {
	dealRepo         repository.DealRepository
	bookingRepo      repository.BookingRepository
	vehicleRepo      repository.VehicleRepository
	notificationRepo repository.NotificationRepository
	queueClient      queue.Client
	logger           *slog.Logger
}

// NewDealService creates a new deal service
func NewDealService(
	dealRepo repository.DealRepository,
	bookingRepo repository.BookingRepository,
	vehicleRepo repository.VehicleRepository,
	notificationRepo repository.NotificationRepository,
	queueClient queue.Client,
	logger *slog.Logger,
) DealService {
	return &dealService{
		dealRepo:         dealRepo,
		bookingRepo:      bookingRepo,
		vehicleRepo:      vehicleRepo,
		notificationRepo: notificationRepo,
		queueClient:      queueClient,
		logger:           logger,
	}
}

// Create validates and persists a new deal with its line items
func (s *dealService) Create(ctx context.Context, req *SaveDealRequest) (*models.Deal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Check-then-write: the unique index on (organization_id, job_number)
	// is the real guarantee, this check is for a friendlier error
	taken, err := s.dealRepo.JobNumberExists(ctx, req.Customer.OrganizationID, req.Customer.JobNumber, 0)
	if err != nil {
		return nil, models.ClassifyError(err)
	}
	if taken {
		return nil, models.ErrConflictWithMsg(
			fmt.Sprintf("job number %s is already in use", req.Customer.JobNumber),
		)
	}

	status := req.Status
	if status == "" {
		status = models.DealStatusOpen
	}

	deal := &models.Deal{
		CustomerDraft: req.Customer,
		Status:        status,
		LineItems:     req.LineItems,
	}
	deal.CustomerName = format.TitleCase(deal.CustomerName)

	if err := s.dealRepo.Create(ctx, deal); err != nil {
		s.logger.Error("failed to create deal",
			slog.String("job_number", req.Customer.JobNumber),
			slog.String("error", err.Error()),
		)
		return nil, models.ClassifyError(err)
	}

	s.logger.Info("deal created",
		slog.Int64("deal_id", deal.ID),
		slog.String("job_number", deal.JobNumber),
		slog.Int("line_items", len(deal.LineItems)),
	)

	s.recordBookings(ctx, deal)
	s.enqueueDispatches(ctx, deal)

	return deal, nil
}

// GetByID retrieves a deal with its line items
func (s *dealService) GetByID(ctx context.Context, id int64) (*models.Deal, error) {
	return s.dealRepo.GetByID(ctx, id)
}

// List retrieves deals with pagination
func (s *dealService) List(ctx context.Context, filter models.DealFilter) (*DealListResult, error) {
	deals, totalCount, err := s.dealRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}

	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)
	pagination := models.NewPaginationResult(filter.Page, filter.PageSize, totalCount)

	return &DealListResult{
		Data:       deals,
		Pagination: pagination,
	}, nil
}

// Update validates and rewrites an existing deal, replacing its line items
// wholesale
func (s *dealService) Update(ctx context.Context, id int64, req *SaveDealRequest) (*models.Deal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.dealRepo.JobNumberExists(ctx, req.Customer.OrganizationID, req.Customer.JobNumber, id)
	if err != nil {
		return nil, models.ClassifyError(err)
	}
	if taken {
		return nil, models.ErrConflictWithMsg(
			fmt.Sprintf("job number %s is already in use", req.Customer.JobNumber),
		)
	}

	status := req.Status
	if status == "" {
		status = existing.Status
	}

	deal := &models.Deal{
		ID:            id,
		CustomerDraft: req.Customer,
		Status:        status,
		LineItems:     req.LineItems,
	}
	deal.CustomerName = format.TitleCase(deal.CustomerName)

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		s.logger.Error("failed to update deal",
			slog.Int64("deal_id", id),
			slog.String("error", err.Error()),
		)
		return nil, models.ClassifyError(err)
	}

	s.logger.Info("deal updated",
		slog.Int64("deal_id", id),
		slog.Int("line_items", len(deal.LineItems)),
	)

	// Line items were replaced wholesale, so the bookings derived from them
	// are rebuilt the same way
	if err := s.bookingRepo.DeleteForDeal(ctx, id); err != nil {
		s.logger.Warn("failed to clear prior vendor bookings",
			slog.Int64("deal_id", id),
			slog.String("error", err.Error()),
		)
	}
	s.recordBookings(ctx, deal)
	s.enqueueDispatches(ctx, deal)

	return deal, nil
}

// Delete removes a deal. Errors propagate to the caller for display.
func (s *dealService) Delete(ctx context.Context, id int64) error {
	if err := s.dealRepo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete deal",
			slog.Int64("deal_id", id),
			slog.String("error", err.Error()),
		)
		return models.ClassifyError(err)
	}

	s.logger.Info("deal deleted", slog.Int64("deal_id", id))
	return nil
}

// CheckVINUnique performs the advisory VIN uniqueness lookup. A failed
// lookup is reported as unverified, never as an error.
func (s *dealService) CheckVINUnique(ctx context.Context, vin string, excludeVehicleID int64) VINCheckResult {
	result := VINCheckResult{VIN: vin}

	if !models.IsValidVIN(vin) {
		return result
	}

	exists, err := s.vehicleRepo.VINExists(ctx, vin, excludeVehicleID)
	if err != nil {
		s.logger.Warn("VIN uniqueness check failed, treating as unverified",
			slog.String("vin", vin),
			slog.String("error", err.Error()),
		)
		return result
	}

	result.Verified = true
	result.Unique = !exists
	return result
}

// recordBookings writes a calendar booking for every off-site line item that
// carries a vendor and a scheduled window. Failures are logged and skipped;
// the deal save has already succeeded.
func (s *dealService) recordBookings(ctx context.Context, deal *models.Deal) {
	for i := range deal.LineItems {
		li := &deal.LineItems[i]
		if !li.IsOffSite || li.VendorID == nil || li.DateScheduled == nil {
			continue
		}

		start, end, ok := scheduledWindow(li)
		if !ok {
			continue
		}

		booking := &models.Booking{
			VendorID:     *li.VendorID,
			DealID:       deal.ID,
			LineItemID:   &li.ID,
			CustomerName: deal.CustomerName,
			JobNumber:    deal.JobNumber,
			StartTime:    start,
			EndTime:      end,
		}

		if err := s.bookingRepo.Create(ctx, booking); err != nil {
			s.logger.Warn("failed to record vendor booking",
				slog.Int64("deal_id", deal.ID),
				slog.Int64("line_item_id", li.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// enqueueDispatches creates pending vendor notifications for off-site line
// items and queues one job per notification. Failures are logged and
// skipped; notifications are best-effort.
func (s *dealService) enqueueDispatches(ctx context.Context, deal *models.Deal) {
	notifications := []*models.VendorNotification{}
	for i := range deal.LineItems {
		li := &deal.LineItems[i]
		if !li.IsOffSite || li.VendorID == nil {
			continue
		}

		content := fmt.Sprintf("Off-site work for job %s (%s)", deal.JobNumber, deal.CustomerName)
		if li.UnitPrice != nil {
			content += ", " + format.Currency(*li.UnitPrice)
		}
		if li.DateScheduled != nil {
			content += ", scheduled " + li.DateScheduled.Format("Jan 2, 2006")
			if li.ScheduledStartTime != "" && li.ScheduledEndTime != "" {
				content += " " + li.ScheduledStartTime + " - " + li.ScheduledEndTime
			}
		}

		notifications = append(notifications, &models.VendorNotification{
			DealID:     deal.ID,
			VendorID:   *li.VendorID,
			LineItemID: li.ID,
			Status:     models.NotificationStatusPending,
			Content:    content,
		})
	}

	if len(notifications) == 0 {
		return
	}

	if err := s.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		s.logger.Error("failed to create vendor notifications",
			slog.Int64("deal_id", deal.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	queued := 0
	for _, n := range notifications {
		job := &models.DispatchJob{NotificationID: n.ID}
		if err := s.queueClient.Publish(ctx, job); err != nil {
			s.logger.Error("failed to queue vendor notification",
				slog.Int64("notification_id", n.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		queued++
	}

	s.logger.Info("vendor dispatches queued",
		slog.Int64("deal_id", deal.ID),
		slog.Int("queued", queued),
	)
}

// scheduledWindow combines the item's date and HH:MM strings into concrete
// timestamps. Items without both times get no booking.
func scheduledWindow(li *models.LineItem) (start, end time.Time, ok bool) {
	if li.DateScheduled == nil || li.ScheduledStartTime == "" || li.ScheduledEndTime == "" {
		return time.Time{}, time.Time{}, false
	}

	startClock, err1 := time.Parse("15:04", li.ScheduledStartTime)
	endClock, err2 := time.Parse("15:04", li.ScheduledEndTime)
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}

	day := *li.DateScheduled
	start = time.Date(day.Year(), day.Month(), day.Day(), startClock.Hour(), startClock.Minute(), 0, 0, day.Location())
	end = time.Date(day.Year(), day.Month(), day.Day(), endClock.Hour(), endClock.Minute(), 0, 0, day.Location())
	return start, end, true
}
