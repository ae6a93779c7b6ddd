package wizard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/service"
)

// mockDealSaver records save calls for the wizard tests
type mockDealSaver struct {
	mu          sync.Mutex
	createCalls int
	updateCalls int
	saveLatency time.Duration
	saveErr     error
	vinResult   service.VINCheckResult
	nextID      int64
}

func (m *mockDealSaver) Create(ctx context.Context, req *service.SaveDealRequest) (*models.Deal, error) {
	if m.saveLatency > 0 {
		time.Sleep(m.saveLatency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.nextID++
	deal := &models.Deal{ID: m.nextID, CustomerDraft: req.Customer, LineItems: req.LineItems}
	return deal, nil
}

func (m *mockDealSaver) Update(ctx context.Context, id int64, req *service.SaveDealRequest) (*models.Deal, error) {
	if m.saveLatency > 0 {
		time.Sleep(m.saveLatency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	deal := &models.Deal{ID: id, CustomerDraft: req.Customer, LineItems: req.LineItems}
	return deal, nil
}

func (m *mockDealSaver) CheckVINUnique(ctx context.Context, vin string, excludeVehicleID int64) service.VINCheckResult {
	return m.vinResult
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validCustomer() models.CustomerDraft {
	return models.CustomerDraft{
		CustomerName:   "john smith",
		JobNumber:      "J-1001",
		OrganizationID: 1,
	}
}

func fillValidItem(w *Wizard, localID string) {
	w.UpdateLineItem(localID, func(li *models.LineItem) {
		pid := int64(7)
		price := decimal.RequireFromString("250.00")
		li.ProductID = &pid
		li.UnitPrice = &price
		li.SetRequiresScheduling(false)
		li.NoScheduleReason = "stock accessory"
	})
}

func TestWizard_NextRequiresCustomerNameAndJobNumber(t *testing.T) {
	tests := []struct {
		name     string
		customer models.CustomerDraft
		wantErr  bool
	}{
		{"complete", validCustomer(), false},
		{"missing name", models.CustomerDraft{JobNumber: "J-1", OrganizationID: 1}, true},
		{"blank name", models.CustomerDraft{CustomerName: "  ", JobNumber: "J-1", OrganizationID: 1}, true},
		{"missing job number", models.CustomerDraft{CustomerName: "Jane", OrganizationID: 1}, true},
		{"missing organization", models.CustomerDraft{CustomerName: "Jane", JobNumber: "J-1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(&mockDealSaver{vinResult: service.VINCheckResult{Verified: true, Unique: true}}, testLogger())
			w.SetCustomer(tt.customer)

			err := w.Next(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Next() error = %v, wantErr %v", err, tt.wantErr)
			}

			wantStep := StepLineItems
			if tt.wantErr {
				wantStep = StepCustomer
			}
			if w.Step() != wantStep {
				t.Errorf("step = %d, want %d", w.Step(), wantStep)
			}
		})
	}
}

func TestWizard_NextEmailAndDateChecks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *models.CustomerDraft)
		wantErr bool
	}{
		{"no email skips the check", func(c *models.CustomerDraft) {}, false},
		{"valid email", func(c *models.CustomerDraft) { c.CustomerEmail = "jane@example.com" }, false},
		{"malformed email", func(c *models.CustomerDraft) { c.CustomerEmail = "not-an-address" }, true},
		{"deal date today", func(c *models.CustomerDraft) { c.DealDate = time.Now() }, false},
		{"deal date in the past", func(c *models.CustomerDraft) { c.DealDate = time.Now().AddDate(0, 0, -7) }, false},
		{"deal date in the future", func(c *models.CustomerDraft) { c.DealDate = time.Now().AddDate(0, 0, 3) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(&mockDealSaver{vinResult: service.VINCheckResult{Verified: true, Unique: true}}, testLogger())
			customer := validCustomer()
			tt.mutate(&customer)
			w.SetCustomer(customer)

			err := w.Next(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Next() error = %v, wantErr %v", err, tt.wantErr)
			}

			wantStep := StepLineItems
			if tt.wantErr {
				wantStep = StepCustomer
			}
			if w.Step() != wantStep {
				t.Errorf("step = %d, want %d", w.Step(), wantStep)
			}
		})
	}
}

func TestWizard_NextVINChecks(t *testing.T) {
	tests := []struct {
		name      string
		vin       string
		vinResult service.VINCheckResult
		wantErr   bool
	}{
		{"no VIN skips the check", "", service.VINCheckResult{}, false},
		{"malformed VIN", "SHORT", service.VINCheckResult{}, true},
		{"duplicate VIN", "1HGBH41JXMN109186", service.VINCheckResult{Verified: true, Unique: false}, true},
		{"unique VIN", "1HGBH41JXMN109186", service.VINCheckResult{Verified: true, Unique: true}, false},
		{"unverified lookup does not block", "1HGBH41JXMN109186", service.VINCheckResult{Verified: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(&mockDealSaver{vinResult: tt.vinResult}, testLogger())
			customer := validCustomer()
			customer.VIN = tt.vin
			w.SetCustomer(customer)

			err := w.Next(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Next() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWizard_BackKeepsData(t *testing.T) {
	w := New(&mockDealSaver{}, testLogger())
	w.SetCustomer(validCustomer())
	if err := w.Next(context.Background()); err != nil {
		t.Fatalf("Next() failed: %v", err)
	}

	localID := w.AddLineItem()
	fillValidItem(w, localID)

	w.Back()
	if w.Step() != StepCustomer {
		t.Fatalf("step = %d, want StepCustomer", w.Step())
	}
	if len(w.LineItems()) != 1 {
		t.Error("line items lost on Back()")
	}
	if w.Customer().CustomerName != "john smith" {
		t.Error("customer draft lost on Back()")
	}
}

func TestWizard_CancelGuardsUnsavedChanges(t *testing.T) {
	w := New(&mockDealSaver{}, testLogger())

	// Untouched draft discards silently
	if err := w.Cancel(false); err != nil {
		t.Errorf("Cancel on clean draft returned %v", err)
	}

	w.SetCustomer(validCustomer())
	if err := w.Cancel(false); !errors.Is(err, ErrUnsavedChanges) {
		t.Errorf("Cancel on dirty draft returned %v, want ErrUnsavedChanges", err)
	}

	if err := w.Cancel(true); err != nil {
		t.Errorf("confirmed Cancel returned %v", err)
	}
	if w.Dirty() || w.Customer().CustomerName != "" {
		t.Error("confirmed Cancel should discard the draft")
	}
}

func TestWizard_CanSaveTracksRuleCheck(t *testing.T) {
	w := New(&mockDealSaver{}, testLogger())
	w.SetCustomer(validCustomer())
	if err := w.Next(context.Background()); err != nil {
		t.Fatalf("Next() failed: %v", err)
	}

	if w.CanSave() {
		t.Error("CanSave() true with no line items")
	}

	localID := w.AddLineItem()
	if w.CanSave() {
		t.Error("CanSave() true with an incomplete item")
	}

	fillValidItem(w, localID)
	if !w.CanSave() {
		t.Error("CanSave() false with a valid item")
	}
}

func TestWizard_SaveDoubleSubmit(t *testing.T) {
	saver := &mockDealSaver{saveLatency: 100 * time.Millisecond}
	w := New(saver, testLogger())
	w.SetCustomer(validCustomer())
	if err := w.Next(context.Background()); err != nil {
		t.Fatalf("Next() failed: %v", err)
	}
	fillValidItem(w, w.AddLineItem())

	var wg sync.WaitGroup
	var saveErrs atomic.Int64
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := w.Save(context.Background()); err != nil {
			saveErrs.Add(1)
		}
	}()

	// Second click lands while the first save is still in flight
	time.Sleep(20 * time.Millisecond)
	if _, err := w.Save(context.Background()); err != nil {
		saveErrs.Add(1)
	}
	wg.Wait()

	if saver.createCalls != 1 {
		t.Errorf("Create called %d times, want exactly 1", saver.createCalls)
	}
	if saveErrs.Load() != 0 {
		t.Error("skipped save should be a silent no-op, not an error")
	}
}

func TestWizard_SaveValidationFailureKeepsDraft(t *testing.T) {
	saver := &mockDealSaver{}
	w := New(saver, testLogger())
	w.SetCustomer(validCustomer())
	if err := w.Next(context.Background()); err != nil {
		t.Fatalf("Next() failed: %v", err)
	}
	w.AddLineItem() // incomplete item

	if _, err := w.Save(context.Background()); err == nil {
		t.Fatal("Save() should fail validation")
	}
	if saver.createCalls != 0 {
		t.Error("no save call should be made when validation fails")
	}
	if len(w.LineItems()) != 1 {
		t.Error("failed save must keep the draft editable")
	}

	// Guard must be re-armed: fixing the draft and saving again works
	fillValidItem(w, w.LineItems()[0].LocalID)
	if _, err := w.Save(context.Background()); err != nil {
		t.Errorf("retry after failure returned %v", err)
	}
	if saver.createCalls != 1 {
		t.Errorf("Create called %d times after retry, want 1", saver.createCalls)
	}
}

func TestWizard_SaveSuccessDiscardsDraft(t *testing.T) {
	saver := &mockDealSaver{}
	w := New(saver, testLogger())
	w.SetCustomer(validCustomer())
	if err := w.Next(context.Background()); err != nil {
		t.Fatalf("Next() failed: %v", err)
	}
	fillValidItem(w, w.AddLineItem())

	deal, err := w.Save(context.Background())
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if deal == nil || deal.ID == 0 {
		t.Fatal("Save() should return the persisted deal")
	}
	if w.Step() != StepCustomer || w.Dirty() || len(w.LineItems()) != 0 {
		t.Error("successful save should reset the wizard")
	}
}

func TestWizard_Rehydration(t *testing.T) {
	saver := &mockDealSaver{}
	w := New(saver, testLogger())

	record := func(id int64, name string) *models.Deal {
		pid := int64(3)
		price := decimal.RequireFromString("99.00")
		return &models.Deal{
			ID: id,
			CustomerDraft: models.CustomerDraft{
				CustomerName:   name,
				JobNumber:      "J-55",
				OrganizationID: 1,
			},
			LineItems: []models.LineItem{{
				ID:               41,
				ProductID:        &pid,
				UnitPrice:        &price,
				NoScheduleReason: "customer declined",
			}},
		}
	}

	// Initial hydration populates the draft
	w.Hydrate(record(10, "Alice Johnson"))
	if w.Customer().CustomerName != "Alice Johnson" {
		t.Fatal("initial hydration did not populate the draft")
	}
	if w.Dirty() {
		t.Fatal("hydration must not mark the draft dirty")
	}

	// A refreshed snapshot of the same record re-syncs while clean
	w.Hydrate(record(10, "Alice J. Johnson"))
	if w.Customer().CustomerName != "Alice J. Johnson" {
		t.Error("clean draft should re-sync from a refreshed snapshot")
	}

	// After a local edit, refreshes must not clobber user input
	edited := w.Customer()
	edited.CustomerName = "Alice Johnson-Lee"
	w.SetCustomer(edited)

	w.Hydrate(record(10, "Alice J. Johnson"))
	if w.Customer().CustomerName != "Alice Johnson-Lee" {
		t.Error("refresh overwrote the user's edit")
	}

	// A different record identity always hydrates
	w.Hydrate(record(11, "Bob Okafor"))
	if w.Customer().CustomerName != "Bob Okafor" {
		t.Error("new record identity should hydrate even after edits")
	}
	if w.Dirty() {
		t.Error("hydrating a new record should clear the dirty flag")
	}
}

func TestWizard_SaveUsesUpdateInEditMode(t *testing.T) {
	saver := &mockDealSaver{}
	w := New(saver, testLogger())

	pid := int64(3)
	price := decimal.RequireFromString("99.00")
	w.Hydrate(&models.Deal{
		ID: 42,
		CustomerDraft: models.CustomerDraft{
			CustomerName:   "Carol Danvers",
			JobNumber:      "J-77",
			OrganizationID: 1,
		},
		LineItems: []models.LineItem{{
			ID:               5,
			ProductID:        &pid,
			UnitPrice:        &price,
			NoScheduleReason: "no install needed",
		}},
	})
	if err := w.Next(context.Background()); err != nil {
		t.Fatalf("Next() failed: %v", err)
	}

	if _, err := w.Save(context.Background()); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if saver.updateCalls != 1 || saver.createCalls != 0 {
		t.Errorf("edit-mode save: updates=%d creates=%d, want 1/0", saver.updateCalls, saver.createCalls)
	}
}

func TestWizard_Total(t *testing.T) {
	w := New(&mockDealSaver{}, testLogger())

	add := func(price string, qty int) {
		id := w.AddLineItem()
		w.UpdateLineItem(id, func(li *models.LineItem) {
			p := decimal.RequireFromString(price)
			li.UnitPrice = &p
			li.Quantity = qty
		})
	}

	add("100.00", 3)
	add("49.50", 2)

	// The wizard total ignores quantity
	if got := w.Total(); !got.Equal(decimal.RequireFromString("149.50")) {
		t.Errorf("Total() = %s, want 149.50", got)
	}
}
