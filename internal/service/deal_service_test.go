package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/queue"
)

type mockDealRepo struct {
	deals        map[int64]*models.Deal
	nextID       int64
	takenJobs    map[string]int64
	createErr    error
	jobExistsErr error
}

func newMockDealRepo() *mockDealRepo {
	return &mockDealRepo{
		deals:     map[int64]*models.Deal{},
		takenJobs: map[string]int64{},
	}
}

func (m *mockDealRepo) Create(ctx context.Context, deal *models.Deal) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	deal.ID = m.nextID
	for i := range deal.LineItems {
		deal.LineItems[i].ID = int64(i + 1)
		deal.LineItems[i].DealID = deal.ID
	}
	copied := *deal
	m.deals[deal.ID] = &copied
	m.takenJobs[deal.JobNumber] = deal.ID
	return nil
}

func (m *mockDealRepo) GetByID(ctx context.Context, id int64) (*models.Deal, error) {
	d, ok := m.deals[id]
	if !ok {
		return nil, models.ErrNotFoundWithMsg("deal not found")
	}
	copied := *d
	return &copied, nil
}

func (m *mockDealRepo) List(ctx context.Context, filter models.DealFilter) ([]*models.Deal, int64, error) {
	result := []*models.Deal{}
	for _, d := range m.deals {
		result = append(result, d)
	}
	return result, int64(len(result)), nil
}

func (m *mockDealRepo) Update(ctx context.Context, deal *models.Deal) error {
	if _, ok := m.deals[deal.ID]; !ok {
		return models.ErrNotFoundWithMsg("deal not found")
	}
	copied := *deal
	m.deals[deal.ID] = &copied
	return nil
}

func (m *mockDealRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.deals[id]; !ok {
		return models.ErrNotFoundWithMsg("deal not found")
	}
	delete(m.deals, id)
	return nil
}

func (m *mockDealRepo) JobNumberExists(ctx context.Context, orgID int64, jobNumber string, excludeDealID int64) (bool, error) {
	if m.jobExistsErr != nil {
		return false, m.jobExistsErr
	}
	id, ok := m.takenJobs[jobNumber]
	return ok && id != excludeDealID, nil
}

type mockVehicleRepo struct {
	existing map[string]bool
	err      error
}

func (m *mockVehicleRepo) VINExists(ctx context.Context, vin string, excludeVehicleID int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.existing[strings.ToUpper(vin)], nil
}

type mockDispatchRepo struct {
	notifications []*models.VendorNotification
	createErr     error
}

func (m *mockDispatchRepo) CreateBatch(ctx context.Context, notifications []*models.VendorNotification) error {
	if m.createErr != nil {
		return m.createErr
	}
	for i, n := range notifications {
		n.ID = int64(len(m.notifications) + i + 1)
	}
	m.notifications = append(m.notifications, notifications...)
	return nil
}

func (m *mockDispatchRepo) GetByID(ctx context.Context, id int64) (*models.VendorNotification, error) {
	for _, n := range m.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, models.ErrNotFoundWithMsg("notification not found")
}

func (m *mockDispatchRepo) List(ctx context.Context, filter models.NotificationFilter) ([]*models.VendorNotification, int64, error) {
	return m.notifications, int64(len(m.notifications)), nil
}

func (m *mockDispatchRepo) UpdateStatus(ctx context.Context, id int64, status string, lastError *string) error {
	return nil
}

func (m *mockDispatchRepo) IncrementRetryCount(ctx context.Context, id int64) error {
	return nil
}

type mockQueueClient struct {
	published  []*models.DispatchJob
	publishErr error
}

func (m *mockQueueClient) Publish(ctx context.Context, job *models.DispatchJob) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, job)
	return nil
}

func (m *mockQueueClient) Consume(ctx context.Context, handler queue.DispatchHandler, concurrency int) error {
	return nil
}

func (m *mockQueueClient) Close() error { return nil }

func (m *mockQueueClient) Health(ctx context.Context) error { return nil }

type dealTestEnv struct {
	svc          DealService
	dealRepo     *mockDealRepo
	bookingRepo  *mockBookingRepo
	vehicleRepo  *mockVehicleRepo
	dispatchRepo *mockDispatchRepo
	queueClient  *mockQueueClient
}

func newDealTestEnv() *dealTestEnv {
	env := &dealTestEnv{
		dealRepo:     newMockDealRepo(),
		bookingRepo:  newMockBookingRepo(),
		vehicleRepo:  &mockVehicleRepo{existing: map[string]bool{}},
		dispatchRepo: &mockDispatchRepo{},
		queueClient:  &mockQueueClient{},
	}
	env.svc = NewDealService(
		env.dealRepo,
		env.bookingRepo,
		env.vehicleRepo,
		env.dispatchRepo,
		env.queueClient,
		discardLogger(),
	)
	return env
}

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func intp(v int64) *int64 { return &v }

func validRequest() *SaveDealRequest {
	item := models.NewLineItem()
	item.ProductID = intp(10)
	item.UnitPrice = price("499.99")
	item.NoScheduleReason = "customer declined"
	return &SaveDealRequest{
		Customer: models.CustomerDraft{
			CustomerName:   "john smith",
			JobNumber:      "J-1001",
			OrganizationID: 1,
		},
		LineItems: []models.LineItem{item},
	}
}

func TestDealService_Create(t *testing.T) {
	env := newDealTestEnv()

	deal, err := env.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if deal.ID == 0 {
		t.Error("deal should receive an ID")
	}
	if deal.CustomerName != "John Smith" {
		t.Errorf("customer name = %q, want title-cased %q", deal.CustomerName, "John Smith")
	}
	if deal.Status != models.DealStatusOpen {
		t.Errorf("status = %q, want default %q", deal.Status, models.DealStatusOpen)
	}
}

func TestDealService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *SaveDealRequest)
		wantMsg string
	}{
		{
			"missing customer name",
			func(r *SaveDealRequest) { r.Customer.CustomerName = "   " },
			"Customer name is required",
		},
		{
			"missing job number",
			func(r *SaveDealRequest) { r.Customer.JobNumber = "" },
			"Job number is required",
		},
		{
			"missing organization",
			func(r *SaveDealRequest) { r.Customer.OrganizationID = 0 },
			"Organization context is required",
		},
		{
			"bad email",
			func(r *SaveDealRequest) { r.Customer.CustomerEmail = "not-an-address" },
			"Customer email is not a valid address",
		},
		{
			"bad vin",
			func(r *SaveDealRequest) { r.Customer.VIN = "IIIII11111IIIII11" },
			"VIN must be 17 characters",
		},
		{
			"future deal date",
			func(r *SaveDealRequest) { r.Customer.DealDate = time.Now().AddDate(0, 0, 2) },
			"Deal date cannot be in the future",
		},
		{
			"no line items",
			func(r *SaveDealRequest) { r.LineItems = nil },
			"Please add at least one line item",
		},
		{
			"line item missing price",
			func(r *SaveDealRequest) { r.LineItems[0].UnitPrice = nil },
			"Line item 1: Product and price are required",
		},
		{
			"unscheduled item missing reason",
			func(r *SaveDealRequest) { r.LineItems[0].NoScheduleReason = "  " },
			"Line item 1: No-schedule reason is required",
		},
		{
			"off-site without vendor",
			func(r *SaveDealRequest) { r.LineItems[0].IsOffSite = true },
			"Off-site line items require a vendor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newDealTestEnv()
			req := validRequest()
			tt.mutate(req)

			_, err := env.svc.Create(context.Background(), req)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
			if len(env.dealRepo.deals) != 0 {
				t.Error("invalid request must not be persisted")
			}
		})
	}
}

func TestDealService_Create_DuplicateJobNumber(t *testing.T) {
	env := newDealTestEnv()

	if _, err := env.svc.Create(context.Background(), validRequest()); err != nil {
		t.Fatalf("first Create() failed: %v", err)
	}

	_, err := env.svc.Create(context.Background(), validRequest())
	if err == nil {
		t.Fatal("duplicate job number should be rejected")
	}
	if !strings.Contains(err.Error(), "already in use") {
		t.Errorf("error = %q, want a job-number conflict", err.Error())
	}
}

func TestDealService_Create_RecordsBookingsAndDispatches(t *testing.T) {
	env := newDealTestEnv()

	day := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	offsite := models.NewLineItem()
	offsite.ProductID = intp(20)
	offsite.UnitPrice = price("250.00")
	offsite.SetRequiresScheduling(true)
	offsite.DateScheduled = &day
	offsite.ScheduledStartTime = "09:00"
	offsite.ScheduledEndTime = "11:00"
	offsite.IsOffSite = true
	offsite.VendorID = intp(5)

	req := validRequest()
	req.LineItems = append(req.LineItems, offsite)

	deal, err := env.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if len(env.bookingRepo.bookings) != 1 {
		t.Fatalf("bookings recorded = %d, want 1", len(env.bookingRepo.bookings))
	}
	for _, b := range env.bookingRepo.bookings {
		if b.VendorID != 5 || b.DealID != deal.ID {
			t.Errorf("booking = %+v, want vendor 5 on deal %d", b, deal.ID)
		}
		if !b.StartTime.Equal(time.Date(2026, 9, 15, 9, 0, 0, 0, time.UTC)) {
			t.Errorf("booking start = %v, want 09:00 on the scheduled day", b.StartTime)
		}
	}

	if len(env.dispatchRepo.notifications) != 1 {
		t.Fatalf("notifications created = %d, want 1", len(env.dispatchRepo.notifications))
	}
	if len(env.queueClient.published) != 1 {
		t.Fatalf("jobs queued = %d, want 1", len(env.queueClient.published))
	}
	if env.queueClient.published[0].NotificationID != env.dispatchRepo.notifications[0].ID {
		t.Error("queued job should reference the stored notification")
	}
}

func TestDealService_Create_QueueFailureDoesNotFailSave(t *testing.T) {
	env := newDealTestEnv()
	env.queueClient.publishErr = errors.New("connection refused")

	day := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	offsite := models.NewLineItem()
	offsite.ProductID = intp(20)
	offsite.UnitPrice = price("250.00")
	offsite.SetRequiresScheduling(true)
	offsite.DateScheduled = &day
	offsite.IsOffSite = true
	offsite.VendorID = intp(5)

	req := validRequest()
	req.LineItems = append(req.LineItems, offsite)

	deal, err := env.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create() should succeed despite queue failure: %v", err)
	}
	if deal.ID == 0 {
		t.Error("deal should be persisted")
	}
}

func TestDealService_Update_RebuildsBookingsAndDispatches(t *testing.T) {
	env := newDealTestEnv()

	deal, err := env.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if len(env.bookingRepo.bookings) != 0 {
		t.Fatalf("on-site deal should start with no bookings, got %d", len(env.bookingRepo.bookings))
	}

	// Edit the deal to add an off-site scheduled item
	day := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)
	offsite := models.NewLineItem()
	offsite.ProductID = intp(20)
	offsite.UnitPrice = price("250.00")
	offsite.SetRequiresScheduling(true)
	offsite.DateScheduled = &day
	offsite.ScheduledStartTime = "13:00"
	offsite.ScheduledEndTime = "15:00"
	offsite.IsOffSite = true
	offsite.VendorID = intp(7)

	req := validRequest()
	req.LineItems = append(req.LineItems, offsite)

	if _, err := env.svc.Update(context.Background(), deal.ID, req); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	if len(env.bookingRepo.bookings) != 1 {
		t.Fatalf("bookings after update = %d, want 1", len(env.bookingRepo.bookings))
	}
	for _, b := range env.bookingRepo.bookings {
		if b.VendorID != 7 || b.DealID != deal.ID {
			t.Errorf("booking = %+v, want vendor 7 on deal %d", b, deal.ID)
		}
	}
	if len(env.queueClient.published) != 1 {
		t.Errorf("jobs queued after update = %d, want 1", len(env.queueClient.published))
	}

	// Editing the off-site item away clears its booking
	if _, err := env.svc.Update(context.Background(), deal.ID, validRequest()); err != nil {
		t.Fatalf("second Update() failed: %v", err)
	}
	if len(env.bookingRepo.bookings) != 0 {
		t.Errorf("bookings after removing the off-site item = %d, want 0", len(env.bookingRepo.bookings))
	}
}

func TestDealService_Update_ReplacesLineItems(t *testing.T) {
	env := newDealTestEnv()

	deal, err := env.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	req := validRequest()
	second := models.NewLineItem()
	second.ProductID = intp(30)
	second.UnitPrice = price("75.00")
	req.LineItems = append(req.LineItems, second)

	updated, err := env.svc.Update(context.Background(), deal.ID, req)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if len(updated.LineItems) != 2 {
		t.Errorf("line items = %d, want 2", len(updated.LineItems))
	}

	// The deal keeps its own job number on update
	if _, err := env.svc.Update(context.Background(), deal.ID, validRequest()); err != nil {
		t.Errorf("updating a deal with its own job number should not conflict: %v", err)
	}
}

func TestDealService_Update_NotFound(t *testing.T) {
	env := newDealTestEnv()

	_, err := env.svc.Update(context.Background(), 99, validRequest())
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDealService_CheckVINUnique(t *testing.T) {
	const takenVIN = "1HGCM82633A004352"
	const freeVIN = "5YJSA1E26HF000337"

	tests := []struct {
		name     string
		vin      string
		repoErr  error
		want     VINCheckResult
	}{
		{
			"unique vin",
			freeVIN,
			nil,
			VINCheckResult{VIN: freeVIN, Unique: true, Verified: true},
		},
		{
			"duplicate vin",
			takenVIN,
			nil,
			VINCheckResult{VIN: takenVIN, Unique: false, Verified: true},
		},
		{
			"malformed vin skips the lookup",
			"SHORT",
			nil,
			VINCheckResult{VIN: "SHORT"},
		},
		{
			"lookup failure reports unverified",
			freeVIN,
			errors.New("timeout"),
			VINCheckResult{VIN: freeVIN},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newDealTestEnv()
			env.vehicleRepo.existing[takenVIN] = true
			env.vehicleRepo.err = tt.repoErr

			got := env.svc.CheckVINUnique(context.Background(), tt.vin, 0)
			if got != tt.want {
				t.Errorf("CheckVINUnique() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDealService_Delete(t *testing.T) {
	env := newDealTestEnv()

	deal, err := env.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := env.svc.Delete(context.Background(), deal.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, err := env.svc.GetByID(context.Background(), deal.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("deleted deal should be gone, got %v", err)
	}
}
