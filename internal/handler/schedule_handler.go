package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/northpoint-auto/dealdesk-backend/internal/service"
)

// ScheduleHandler handles booking and conflict-check HTTP requests
type ScheduleHandler struct {
	scheduleService service.ScheduleService
	watcher         *service.ConflictWatcher
	logger          *slog.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(scheduleService service.ScheduleService, watcher *service.ConflictWatcher, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		watcher:         watcher,
		logger:          logger,
	}
}

// BookingResponse wraps a saved booking or, when the window collides and the
// request did not acknowledge it, the conflict that blocked the save
type BookingResponse struct {
	Booking    interface{}             `json:"booking,omitempty"`
	Conflict   *service.ConflictResult `json:"conflict,omitempty"`
	Superseded bool                    `json:"superseded,omitempty"`
}

// CheckConflict handles GET /schedule/conflict-check. A response is produced
// even when the underlying query fails: the check degrades to "no conflict".
// Checks run through the watcher, so a response overtaken by a newer check
// comes back marked superseded and carries no conflict for the form to show.
func (h *ScheduleHandler) CheckConflict(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	vendorID, err := strconv.ParseInt(query.Get("vendor_id"), 10, 64)
	if err != nil || vendorID <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "vendor_id query parameter is required")
		return
	}

	start, err := time.Parse(time.RFC3339, query.Get("start"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "start must be an RFC 3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, query.Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "end must be an RFC 3339 timestamp")
		return
	}

	excludeBookingID, _ := strconv.ParseInt(query.Get("exclude_booking_id"), 10, 64)

	conflict, fresh := h.watcher.Check(r.Context(), vendorID, start, end, excludeBookingID)
	respondSuccess(w, BookingResponse{Conflict: conflict, Superseded: !fresh})
}

// ListVendorBookings handles GET /vendors/{id}/bookings
func (h *ScheduleHandler) ListVendorBookings(w http.ResponseWriter, r *http.Request) {
	vendorID, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid vendor ID")
		return
	}

	query := r.URL.Query()
	start, err := time.Parse(time.RFC3339, query.Get("start"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "start must be an RFC 3339 timestamp")
		return
	}
	end, err := time.Parse(time.RFC3339, query.Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "end must be an RFC 3339 timestamp")
		return
	}

	bookings, err := h.scheduleService.ListVendorBookings(r.Context(), vendorID, start, end)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, bookings)
}

// CreateBooking handles POST /bookings
func (h *ScheduleHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req service.SaveBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	booking, conflict, err := h.scheduleService.CreateBooking(r.Context(), &req)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}
	if conflict != nil {
		respondJSON(w, http.StatusConflict, BookingResponse{Conflict: conflict})
		return
	}

	respondCreated(w, BookingResponse{Booking: booking})
}

// RescheduleBooking handles PUT /bookings/{id}
func (h *ScheduleHandler) RescheduleBooking(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	var req service.SaveBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	booking, conflict, err := h.scheduleService.RescheduleBooking(r.Context(), id, &req)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}
	if conflict != nil {
		respondJSON(w, http.StatusConflict, BookingResponse{Conflict: conflict})
		return
	}

	respondSuccess(w, BookingResponse{Booking: booking})
}

// DeleteBooking handles DELETE /bookings/{id}
func (h *ScheduleHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return
	}

	if err := h.scheduleService.DeleteBooking(r.Context(), id); err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondNoContent(w)
}
