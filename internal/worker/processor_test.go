package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
)

// mockNotificationRepo implements repository.NotificationRepository in memory
type mockNotificationRepo struct {
	notifications map[int64]*models.VendorNotification
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifications: map[int64]*models.VendorNotification{}}
}

func (m *mockNotificationRepo) CreateBatch(ctx context.Context, notifications []*models.VendorNotification) error {
	for i, n := range notifications {
		n.ID = int64(len(m.notifications) + i + 1)
		m.notifications[n.ID] = n
	}
	return nil
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id int64) (*models.VendorNotification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, models.ErrNotFoundWithMsg("notification not found")
	}
	copied := *n
	return &copied, nil
}

func (m *mockNotificationRepo) List(ctx context.Context, filter models.NotificationFilter) ([]*models.VendorNotification, int64, error) {
	return nil, 0, nil
}

func (m *mockNotificationRepo) UpdateStatus(ctx context.Context, id int64, status string, lastError *string) error {
	n, ok := m.notifications[id]
	if !ok {
		return models.ErrNotFoundWithMsg("notification not found")
	}
	n.Status = status
	n.LastError = lastError
	return nil
}

func (m *mockNotificationRepo) IncrementRetryCount(ctx context.Context, id int64) error {
	n, ok := m.notifications[id]
	if !ok {
		return models.ErrNotFoundWithMsg("notification not found")
	}
	n.RetryCount++
	return nil
}

// mockVendorRepo serves one vendor
type mockVendorRepo struct {
	vendor *models.Vendor
}

func (m *mockVendorRepo) Create(ctx context.Context, vendor *models.Vendor) error { return nil }
func (m *mockVendorRepo) GetByID(ctx context.Context, id int64) (*models.Vendor, error) {
	if m.vendor == nil || m.vendor.ID != id {
		return nil, models.ErrNotFoundWithMsg("vendor not found")
	}
	return m.vendor, nil
}
func (m *mockVendorRepo) List(ctx context.Context, filter models.VendorFilter) ([]*models.Vendor, int64, error) {
	return nil, 0, nil
}
func (m *mockVendorRepo) Update(ctx context.Context, vendor *models.Vendor) error { return nil }
func (m *mockVendorRepo) Delete(ctx context.Context, id int64) error              { return nil }

// scriptedNotifier fails a fixed number of times before succeeding
type scriptedNotifier struct {
	failuresLeft int
	calls        int
}

func (s *scriptedNotifier) Notify(ctx context.Context, phone, email, content string) error {
	s.calls++
	if s.failuresLeft > 0 {
		s.failuresLeft--
		return errors.New("gateway rejected")
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedNotification(repo *mockNotificationRepo) *models.VendorNotification {
	n := &models.VendorNotification{
		DealID:     9,
		VendorID:   3,
		LineItemID: 14,
		Status:     models.NotificationStatusPending,
		Content:    "Off-site work for job J-1001 (John Smith)",
	}
	repo.CreateBatch(context.Background(), []*models.VendorNotification{n})
	return n
}

func testVendor() *models.Vendor {
	return &models.Vendor{ID: 3, OrganizationID: 1, Name: "Tint Pros", Phone: "5551234567", Active: true}
}

func TestDispatchProcessor_Success(t *testing.T) {
	repo := newMockNotificationRepo()
	n := seedNotification(repo)
	notifier := &scriptedNotifier{}

	p := NewDispatchProcessor(repo, &mockVendorRepo{vendor: testVendor()}, notifier, 3, testLogger())

	if err := p.Process(context.Background(), &models.DispatchJob{NotificationID: n.ID}); err != nil {
		t.Fatalf("Process() failed: %v", err)
	}

	stored := repo.notifications[n.ID]
	if stored.Status != models.NotificationStatusSent {
		t.Errorf("status = %s, want sent", stored.Status)
	}
	if notifier.calls != 1 {
		t.Errorf("notifier called %d times, want 1", notifier.calls)
	}
}

func TestDispatchProcessor_FailureWithinRetryBudget(t *testing.T) {
	repo := newMockNotificationRepo()
	n := seedNotification(repo)
	notifier := &scriptedNotifier{failuresLeft: 5}

	p := NewDispatchProcessor(repo, &mockVendorRepo{vendor: testVendor()}, notifier, 3, testLogger())

	// First attempt: failure recorded, error returned for requeue
	if err := p.Process(context.Background(), &models.DispatchJob{NotificationID: n.ID}); err == nil {
		t.Fatal("Process() should return an error while retries remain")
	}

	stored := repo.notifications[n.ID]
	if stored.Status != models.NotificationStatusFailed {
		t.Errorf("status = %s, want failed", stored.Status)
	}
	if stored.RetryCount != 1 {
		t.Errorf("retry_count = %d, want 1", stored.RetryCount)
	}
}

func TestDispatchProcessor_PermanentFailureAfterMaxRetries(t *testing.T) {
	repo := newMockNotificationRepo()
	n := seedNotification(repo)
	repo.notifications[n.ID].RetryCount = 2
	notifier := &scriptedNotifier{failuresLeft: 5}

	p := NewDispatchProcessor(repo, &mockVendorRepo{vendor: testVendor()}, notifier, 3, testLogger())

	// Third failure exhausts the budget: job completes without error
	if err := p.Process(context.Background(), &models.DispatchJob{NotificationID: n.ID}); err != nil {
		t.Fatalf("Process() returned %v after exhausting retries, want nil", err)
	}

	stored := repo.notifications[n.ID]
	if stored.Status != models.NotificationStatusFailed {
		t.Errorf("status = %s, want failed", stored.Status)
	}
	if stored.LastError == nil {
		t.Error("permanent failure should record the last error")
	}
}

func TestDispatchProcessor_AlreadySentIsNoOp(t *testing.T) {
	repo := newMockNotificationRepo()
	n := seedNotification(repo)
	repo.notifications[n.ID].Status = models.NotificationStatusSent
	notifier := &scriptedNotifier{}

	p := NewDispatchProcessor(repo, &mockVendorRepo{vendor: testVendor()}, notifier, 3, testLogger())

	if err := p.Process(context.Background(), &models.DispatchJob{NotificationID: n.ID}); err != nil {
		t.Fatalf("Process() failed: %v", err)
	}
	if notifier.calls != 0 {
		t.Error("already-sent notification should not be re-delivered")
	}
}
