// Package wizard implements the two-step deal form: customer capture,
// line-item capture, and the save orchestration between them. A Wizard owns
// its draft exclusively; all methods are intended for the single event
// goroutine driving one form instance, except Save, which is guarded
// against concurrent invocation.
package wizard

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/northpoint-auto/dealdesk-backend/internal/dealcheck"
	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/service"
)

// Step identifies the wizard's current screen
type Step int

// Wizard steps
const (
	StepCustomer Step = iota + 1
	StepLineItems
)

// Wizard errors
var (
	ErrUnsavedChanges = errors.New("draft has unsaved changes")
	ErrItemNotFound   = errors.New("line item not found in draft")
)

// DealSaver is the slice of the deal service the wizard needs
type DealSaver interface {
	Create(ctx context.Context, req *service.SaveDealRequest) (*models.Deal, error)
	Update(ctx context.Context, id int64, req *service.SaveDealRequest) (*models.Deal, error)
	CheckVINUnique(ctx context.Context, vin string, excludeVehicleID int64) service.VINCheckResult
}

// Wizard is one open deal form
type Wizard struct {
	deals  DealSaver
	guard  SubmitGuard
	logger *slog.Logger

	step     Step
	customer models.CustomerDraft
	items    []models.LineItem

	// Edit-mode bookkeeping: which record identity was last hydrated, and
	// whether the user has touched the draft since
	editingDealID  int64
	hydratedDealID int64
	dirty          bool
}

// New creates a wizard in create mode on the customer step
func New(deals DealSaver, logger *slog.Logger) *Wizard {
	return &Wizard{
		deals:  deals,
		logger: logger,
		step:   StepCustomer,
	}
}

// Step returns the current step
func (w *Wizard) Step() Step {
	return w.step
}

// Customer returns the current customer draft
func (w *Wizard) Customer() models.CustomerDraft {
	return w.customer
}

// LineItems returns the draft's items in order
func (w *Wizard) LineItems() []models.LineItem {
	items := make([]models.LineItem, len(w.items))
	copy(items, w.items)
	return items
}

// Dirty reports whether the user has edited the draft since it was opened
// or last hydrated
func (w *Wizard) Dirty() bool {
	return w.dirty
}

// Hydrate populates the draft from a persisted deal. The draft is filled
// once per distinct record identity; a refreshed snapshot of the same
// record re-syncs the fields only while the user has made no local edit.
func (w *Wizard) Hydrate(deal *models.Deal) {
	if deal.ID == w.hydratedDealID && w.dirty {
		// User input wins over external refreshes
		return
	}

	w.customer = deal.CustomerDraft
	w.items = make([]models.LineItem, len(deal.LineItems))
	copy(w.items, deal.LineItems)
	for i := range w.items {
		if w.items[i].LocalID == "" {
			w.items[i].LocalID = models.NewLineItem().LocalID
		}
	}

	w.editingDealID = deal.ID
	w.hydratedDealID = deal.ID
	w.dirty = false
}

// SetCustomer replaces the customer draft and marks the form edited
func (w *Wizard) SetCustomer(draft models.CustomerDraft) {
	w.customer = draft
	w.dirty = true
}

// AddLineItem appends a blank item and returns its local handle
func (w *Wizard) AddLineItem() string {
	item := models.NewLineItem()
	w.items = append(w.items, item)
	w.dirty = true
	return item.LocalID
}

// UpdateLineItem applies mutate to the item with the local handle
func (w *Wizard) UpdateLineItem(localID string, mutate func(*models.LineItem)) error {
	for i := range w.items {
		if w.items[i].LocalID == localID {
			mutate(&w.items[i])
			w.dirty = true
			return nil
		}
	}
	return ErrItemNotFound
}

// RemoveLineItem deletes the item with the local handle
func (w *Wizard) RemoveLineItem(localID string) error {
	for i := range w.items {
		if w.items[i].LocalID == localID {
			w.items = append(w.items[:i], w.items[i+1:]...)
			w.dirty = true
			return nil
		}
	}
	return ErrItemNotFound
}

// Total sums the unit prices of the draft's items. Quantity is ignored on
// this surface.
func (w *Wizard) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range w.items {
		if w.items[i].UnitPrice != nil {
			total = total.Add(*w.items[i].UnitPrice)
		}
	}
	return total
}

// Next advances from the customer step after the step-1 checks pass
func (w *Wizard) Next(ctx context.Context) error {
	if w.step != StepCustomer {
		return nil
	}

	if strings.TrimSpace(w.customer.CustomerName) == "" {
		return models.ErrInvalidInput("Customer name is required")
	}
	if strings.TrimSpace(w.customer.JobNumber) == "" {
		return models.ErrInvalidInput("Job number is required")
	}
	if w.customer.OrganizationID <= 0 {
		return models.ErrInvalidInput("Organization context is required")
	}
	if w.customer.CustomerEmail != "" {
		if _, err := mail.ParseAddress(w.customer.CustomerEmail); err != nil {
			return models.ErrInvalidInput("Customer email is not a valid address")
		}
	}
	if !w.customer.DealDate.IsZero() && w.customer.DealDate.After(endOfToday()) {
		return models.ErrInvalidInput("Deal date cannot be in the future")
	}

	if w.customer.VIN != "" {
		if !models.IsValidVIN(w.customer.VIN) {
			return models.ErrInvalidInput("VIN must be 17 characters (letters I, O, Q not allowed)")
		}

		excludeID := int64(0)
		if w.customer.VehicleID != nil {
			excludeID = *w.customer.VehicleID
		}

		// Advisory: an unverified VIN (lookup failure) does not block
		check := w.deals.CheckVINUnique(ctx, w.customer.VIN, excludeID)
		if check.Verified && !check.Unique {
			return models.ErrInvalidInput("A vehicle with this VIN already exists")
		}
	}

	w.step = StepLineItems
	return nil
}

func endOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
}

// Back returns to the customer step without losing any data
func (w *Wizard) Back() {
	if w.step == StepLineItems {
		w.step = StepCustomer
	}
}

// CanSave reports whether the save control should be enabled. It runs the
// boolean rule check only, so no error messages are produced while typing.
func (w *Wizard) CanSave() bool {
	return w.step == StepLineItems && dealcheck.Check(w.items) && !w.guard.InFlight()
}

// Save validates the draft and persists it through the deal service. While
// a save is in flight, further invocations are silent no-ops: the returned
// deal and error are both nil. On success the draft is discarded and the
// wizard resets to a fresh create-mode form.
func (w *Wizard) Save(ctx context.Context) (*models.Deal, error) {
	var saved *models.Deal

	ran, err := w.guard.Do(func() error {
		if msg := dealcheck.CheckWithError(w.items); msg != "" {
			return models.ErrInvalidInput(msg)
		}

		req := &service.SaveDealRequest{
			Customer:  w.customer,
			LineItems: w.LineItems(),
		}

		var saveErr error
		if w.editingDealID > 0 {
			saved, saveErr = w.deals.Update(ctx, w.editingDealID, req)
		} else {
			saved, saveErr = w.deals.Create(ctx, req)
		}
		return saveErr
	})

	if !ran {
		w.logger.Debug("save ignored, another save is in flight")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	w.reset()
	return saved, nil
}

// Cancel discards the draft. An edited draft needs explicit confirmation.
func (w *Wizard) Cancel(confirmed bool) error {
	if w.dirty && !confirmed {
		return ErrUnsavedChanges
	}
	w.reset()
	return nil
}

// reset returns the wizard to a blank create-mode form
func (w *Wizard) reset() {
	w.step = StepCustomer
	w.customer = models.CustomerDraft{}
	w.items = nil
	w.editingDealID = 0
	w.hydratedDealID = 0
	w.dirty = false
}
