package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/service"
)

// NotificationHandler exposes the vendor dispatch log
type NotificationHandler struct {
	notificationService service.NotificationService
	logger              *slog.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService service.NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// ListNotifications handles GET /notifications
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dealID, _ := strconv.ParseInt(query.Get("deal_id"), 10, 64)
	vendorID, _ := strconv.ParseInt(query.Get("vendor_id"), 10, 64)
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))

	filter := models.NotificationFilter{
		DealID:   dealID,
		VendorID: vendorID,
		Status:   query.Get("status"),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.notificationService.List(r.Context(), filter)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// GetNotification handles GET /notifications/{id}
func (h *NotificationHandler) GetNotification(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}

	notification, err := h.notificationService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, notification)
}
