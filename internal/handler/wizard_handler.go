package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/service"
	"github.com/northpoint-auto/dealdesk-backend/internal/wizard"
)

// WizardHandler drives wizard sessions over HTTP. One session backs one open
// deal form; the token identifies it across requests.
type WizardHandler struct {
	sessions    *wizard.Manager
	dealService service.DealService
	logger      *slog.Logger
}

// NewWizardHandler creates a new wizard handler
func NewWizardHandler(sessions *wizard.Manager, dealService service.DealService, logger *slog.Logger) *WizardHandler {
	return &WizardHandler{
		sessions:    sessions,
		dealService: dealService,
		logger:      logger,
	}
}

// WizardState is the session snapshot returned by every wizard endpoint
type WizardState struct {
	Token     string               `json:"token"`
	Step      int                  `json:"step"`
	Customer  models.CustomerDraft `json:"customer"`
	LineItems []models.LineItem    `json:"line_items"`
	Total     decimal.Decimal      `json:"total"`
	Dirty     bool                 `json:"dirty"`
	CanSave   bool                 `json:"can_save"`
}

func sessionState(token string, w *wizard.Wizard) WizardState {
	return WizardState{
		Token:     token,
		Step:      int(w.Step()),
		Customer:  w.Customer(),
		LineItems: w.LineItems(),
		Total:     w.Total(),
		Dirty:     w.Dirty(),
		CanSave:   w.CanSave(),
	}
}

// OpenSession handles POST /wizard. A deal_id in the body opens the session
// in edit mode, hydrated from the persisted deal.
func (h *WizardHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DealID int64 `json:"deal_id,omitempty"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
			return
		}
	}

	token, session := h.sessions.Open()

	if req.DealID > 0 {
		deal, err := h.dealService.GetByID(r.Context(), req.DealID)
		if err != nil {
			h.sessions.Close(token)
			handleError(w, err, h.logger)
			return
		}
		session.Hydrate(deal)
	}

	respondCreated(w, sessionState(token, session))
}

// GetSession handles GET /wizard/{token}
func (h *WizardHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	token, session, ok := h.session(w, r)
	if !ok {
		return
	}
	respondSuccess(w, sessionState(token, session))
}

// SetCustomer handles PUT /wizard/{token}/customer
func (h *WizardHandler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	token, session, ok := h.session(w, r)
	if !ok {
		return
	}

	var draft models.CustomerDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	session.SetCustomer(draft)
	respondSuccess(w, sessionState(token, session))
}

// AddLineItem handles POST /wizard/{token}/items
func (h *WizardHandler) AddLineItem(w http.ResponseWriter, r *http.Request) {
	token, session, ok := h.session(w, r)
	if !ok {
		return
	}

	localID := session.AddLineItem()
	respondCreated(w, map[string]interface{}{
		"local_id": localID,
		"state":    sessionState(token, session),
	})
}

// UpdateLineItem handles PUT /wizard/{token}/items/{localID}
func (h *WizardHandler) UpdateLineItem(w http.ResponseWriter, r *http.Request) {
	token, session, ok := h.session(w, r)
	if !ok {
		return
	}

	var incoming models.LineItem
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	localID := chi.URLParam(r, "localID")
	err := session.UpdateLineItem(localID, func(li *models.LineItem) {
		// The draft handle survives the edit
		incoming.LocalID = li.LocalID
		*li = incoming
	})
	if errors.Is(err, wizard.ErrItemNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Line item not found in draft")
		return
	}

	respondSuccess(w, sessionState(token, session))
}

// RemoveLineItem handles DELETE /wizard/{token}/items/{localID}
func (h *WizardHandler) RemoveLineItem(w http.ResponseWriter, r *http.Request) {
	token, session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.RemoveLineItem(chi.URLParam(r, "localID")); errors.Is(err, wizard.ErrItemNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Line item not found in draft")
		return
	}

	respondSuccess(w, sessionState(token, session))
}

// Next handles POST /wizard/{token}/next
func (h *WizardHandler) Next(w http.ResponseWriter, r *http.Request) {
	token, session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Next(r.Context()); err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, sessionState(token, session))
}

// Back handles POST /wizard/{token}/back
func (h *WizardHandler) Back(w http.ResponseWriter, r *http.Request) {
	token, session, ok := h.session(w, r)
	if !ok {
		return
	}

	session.Back()
	respondSuccess(w, sessionState(token, session))
}

// Save handles POST /wizard/{token}/save. A save that arrives while another
// is in flight is skipped and acknowledged with 202.
func (h *WizardHandler) Save(w http.ResponseWriter, r *http.Request) {
	token, session, ok := h.session(w, r)
	if !ok {
		return
	}

	deal, err := session.Save(r.Context())
	if err != nil {
		handleError(w, err, h.logger)
		return
	}
	if deal == nil {
		respondJSON(w, http.StatusAccepted, map[string]interface{}{
			"skipped": true,
			"state":   sessionState(token, session),
		})
		return
	}

	respondCreated(w, map[string]interface{}{
		"deal":  deal,
		"state": sessionState(token, session),
	})
}

// Cancel handles POST /wizard/{token}/cancel. An edited draft is only
// discarded when the request confirms it.
func (h *WizardHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	token, session, ok := h.session(w, r)
	if !ok {
		return
	}

	confirmed := r.URL.Query().Get("confirmed") == "true"
	if err := session.Cancel(confirmed); err != nil {
		respondError(w, http.StatusConflict, "UNSAVED_CHANGES", "Draft has unsaved changes, confirm to discard")
		return
	}

	h.sessions.Close(token)
	respondNoContent(w)
}

func (h *WizardHandler) session(w http.ResponseWriter, r *http.Request) (string, *wizard.Wizard, bool) {
	token := chi.URLParam(r, "token")
	session, ok := h.sessions.Get(token)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Wizard session not found")
		return "", nil, false
	}
	return token, session, true
}
