package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/service"
)

// DealHandler handles deal HTTP requests
type DealHandler struct {
	dealService service.DealService
	logger      *slog.Logger
}

// NewDealHandler creates a new deal handler
func NewDealHandler(dealService service.DealService, logger *slog.Logger) *DealHandler {
	return &DealHandler{
		dealService: dealService,
		logger:      logger,
	}
}

// CreateDeal handles POST /deals
func (h *DealHandler) CreateDeal(w http.ResponseWriter, r *http.Request) {
	var req service.SaveDealRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	deal, err := h.dealService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondCreated(w, deal)
}

// ListDeals handles GET /deals
func (h *DealHandler) ListDeals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	orgID, _ := strconv.ParseInt(query.Get("organization_id"), 10, 64)

	filter := models.DealFilter{
		OrganizationID: orgID,
		Status:         query.Get("status"),
		JobNumber:      query.Get("job_number"),
		Page:           page,
		PageSize:       pageSize,
	}

	result, err := h.dealService.List(r.Context(), filter)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// GetDeal handles GET /deals/{id}
func (h *DealHandler) GetDeal(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid deal ID")
		return
	}

	deal, err := h.dealService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, deal)
}

// UpdateDeal handles PUT /deals/{id}
func (h *DealHandler) UpdateDeal(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid deal ID")
		return
	}

	var req service.SaveDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	deal, err := h.dealService.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, deal)
}

// DeleteDeal handles DELETE /deals/{id}
func (h *DealHandler) DeleteDeal(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid deal ID")
		return
	}

	if err := h.dealService.Delete(r.Context(), id); err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondNoContent(w)
}

// CheckVIN handles GET /deals/vin-check. The check is advisory; callers get
// Verified=false rather than an error when the lookup cannot complete.
func (h *DealHandler) CheckVIN(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	vin := query.Get("vin")
	if vin == "" {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "vin query parameter is required")
		return
	}
	excludeVehicleID, _ := strconv.ParseInt(query.Get("exclude_vehicle_id"), 10, 64)

	result := h.dealService.CheckVINUnique(r.Context(), vin, excludeVehicleID)
	respondSuccess(w, result)
}

// parseIDParam extracts a numeric route parameter
func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
