package service

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/repository"
)

// ScheduleService handles vendor bookings and conflict detection
type ScheduleService interface {
	// CheckConflict returns the first booking of the vendor that overlaps
	// the half-open candidate interval, excluding excludeBookingID (0
	// excludes none). The check is advisory: repository failures are
	// logged and reported as no conflict.
	CheckConflict(ctx context.Context, vendorID int64, candidateStart, candidateEnd time.Time, excludeBookingID int64) *ConflictResult

	ListVendorBookings(ctx context.Context, vendorID int64, rangeStart, rangeEnd time.Time) ([]*models.Booking, error)
	CreateBooking(ctx context.Context, req *SaveBookingRequest) (*models.Booking, *ConflictResult, error)
	RescheduleBooking(ctx context.Context, id int64, req *SaveBookingRequest) (*models.Booking, *ConflictResult, error)
	DeleteBooking(ctx context.Context, id int64) error
}

type scheduleService struct {
	bookingRepo repository.BookingRepository
	logger      *slog.Logger
}

// NewScheduleService creates a new schedule service
func NewScheduleService(bookingRepo repository.BookingRepository, logger *slog.Logger) ScheduleService {
	return &scheduleService{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// CheckConflict reports the first overlapping booking, or nil
func (s *scheduleService) CheckConflict(ctx context.Context, vendorID int64, candidateStart, candidateEnd time.Time, excludeBookingID int64) *ConflictResult {
	bookings, err := s.bookingRepo.ListForVendorInRange(ctx, vendorID, candidateStart, candidateEnd, excludeBookingID)
	if err != nil {
		// Fail open: the conflict check is advisory and must never take
		// the form down with it
		s.logger.Warn("conflict check query failed, treating as no conflict",
			slog.Int64("vendor_id", vendorID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	for _, b := range bookings {
		if b.Overlaps(candidateStart, candidateEnd) {
			return &ConflictResult{
				BookingID:    b.ID,
				CustomerName: b.CustomerName,
				JobNumber:    b.JobNumber,
				TimeRange:    formatTimeRange(b.StartTime, b.EndTime),
			}
		}
	}

	return nil
}

// ListVendorBookings returns the vendor's bookings overlapping the range
func (s *scheduleService) ListVendorBookings(ctx context.Context, vendorID int64, rangeStart, rangeEnd time.Time) ([]*models.Booking, error) {
	return s.bookingRepo.ListForVendorInRange(ctx, vendorID, rangeStart, rangeEnd, 0)
}

// CreateBooking saves a new booking. A conflict is returned instead of a
// saved booking until the request acknowledges it.
func (s *scheduleService) CreateBooking(ctx context.Context, req *SaveBookingRequest) (*models.Booking, *ConflictResult, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	if conflict := s.CheckConflict(ctx, req.VendorID, req.StartTime, req.EndTime, 0); conflict != nil && !req.AcknowledgeConflict {
		return nil, conflict, nil
	}

	booking := &models.Booking{
		VendorID:     req.VendorID,
		DealID:       req.DealID,
		LineItemID:   req.LineItemID,
		CustomerName: req.CustomerName,
		JobNumber:    req.JobNumber,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		s.logger.Error("failed to create booking",
			slog.Int64("vendor_id", req.VendorID),
			slog.String("error", err.Error()),
		)
		return nil, nil, models.ClassifyError(err)
	}

	s.logger.Info("booking created",
		slog.Int64("booking_id", booking.ID),
		slog.Int64("vendor_id", booking.VendorID),
	)

	return booking, nil, nil
}

// RescheduleBooking moves an existing booking, excluding it from its own
// conflict check
func (s *scheduleService) RescheduleBooking(ctx context.Context, id int64, req *SaveBookingRequest) (*models.Booking, *ConflictResult, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}

	existing, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if conflict := s.CheckConflict(ctx, req.VendorID, req.StartTime, req.EndTime, id); conflict != nil && !req.AcknowledgeConflict {
		return nil, conflict, nil
	}

	existing.VendorID = req.VendorID
	existing.CustomerName = req.CustomerName
	existing.JobNumber = req.JobNumber
	existing.StartTime = req.StartTime
	existing.EndTime = req.EndTime

	if err := s.bookingRepo.Update(ctx, existing); err != nil {
		s.logger.Error("failed to reschedule booking",
			slog.Int64("booking_id", id),
			slog.String("error", err.Error()),
		)
		return nil, nil, models.ClassifyError(err)
	}

	s.logger.Info("booking rescheduled",
		slog.Int64("booking_id", id),
		slog.Int64("vendor_id", existing.VendorID),
	)

	return existing, nil, nil
}

// DeleteBooking removes a booking
func (s *scheduleService) DeleteBooking(ctx context.Context, id int64) error {
	if err := s.bookingRepo.Delete(ctx, id); err != nil {
		return models.ClassifyError(err)
	}
	return nil
}

// formatTimeRange renders a booking window for the conflict warning
func formatTimeRange(start, end time.Time) string {
	if start.Year() == end.Year() && start.YearDay() == end.YearDay() {
		return start.Format("Jan 2, 2006 15:04") + " - " + end.Format("15:04")
	}
	return start.Format("Jan 2, 2006 15:04") + " - " + end.Format("Jan 2, 2006 15:04")
}

// ConflictWatcher serializes the live conflict re-checks triggered as the
// schedule modal's fields change. Responses for anything but the most
// recently requested (vendor, start, end) triple are discarded, so a slow
// early check can never overwrite the result of a later one.
type ConflictWatcher struct {
	svc ScheduleService
	seq atomic.Uint64
}

// NewConflictWatcher creates a watcher over the schedule service
func NewConflictWatcher(svc ScheduleService) *ConflictWatcher {
	return &ConflictWatcher{svc: svc}
}

// Check runs a conflict check for the latest field values. The second
// return is false when the response is stale and must be ignored.
func (w *ConflictWatcher) Check(ctx context.Context, vendorID int64, start, end time.Time, excludeBookingID int64) (*ConflictResult, bool) {
	token := w.seq.Add(1)

	conflict := w.svc.CheckConflict(ctx, vendorID, start, end, excludeBookingID)

	if w.seq.Load() != token {
		return nil, false
	}
	return conflict, true
}
