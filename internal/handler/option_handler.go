package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/service"
)

// OptionHandler serves the dropdown sources the deal forms load
type OptionHandler struct {
	optionService service.OptionService
	logger        *slog.Logger
}

// NewOptionHandler creates a new option handler
func NewOptionHandler(optionService service.OptionService, logger *slog.Logger) *OptionHandler {
	return &OptionHandler{
		optionService: optionService,
		logger:        logger,
	}
}

// LoadAll handles GET /options. Sources that fail to load come back as empty
// lists, so the wizard can always open.
func (h *OptionHandler) LoadAll(w http.ResponseWriter, r *http.Request) {
	filter, ok := optionFilterFromQuery(w, r)
	if !ok {
		return
	}

	results := h.optionService.LoadAll(r.Context(), filter)
	respondSuccess(w, results)
}

// LoadKind handles GET /options/{kind}
func (h *OptionHandler) LoadKind(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if !models.IsValidOptionKind(kind) {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Unknown option kind")
		return
	}

	filter, ok := optionFilterFromQuery(w, r)
	if !ok {
		return
	}

	options := h.optionService.Load(r.Context(), kind, filter)
	respondSuccess(w, options)
}

func optionFilterFromQuery(w http.ResponseWriter, r *http.Request) (models.OptionFilter, bool) {
	query := r.URL.Query()

	orgID, err := strconv.ParseInt(query.Get("organization_id"), 10, 64)
	if err != nil || orgID <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "organization_id query parameter is required")
		return models.OptionFilter{}, false
	}

	activeOnly := query.Get("active_only") != "false"

	return models.OptionFilter{
		OrganizationID: orgID,
		ActiveOnly:     activeOnly,
	}, true
}
