package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
)

type mockOptionRepo struct {
	mu      sync.Mutex
	options map[string][]models.Option
	failing map[string]bool
	loads   int
}

func (m *mockOptionRepo) LoadOptions(ctx context.Context, kind string, filter models.OptionFilter) ([]models.Option, error) {
	m.mu.Lock()
	m.loads++
	m.mu.Unlock()
	if m.failing[kind] {
		return nil, errors.New("connection refused")
	}
	return m.options[kind], nil
}

type memoryOptionCache struct {
	mu          sync.Mutex
	entries     map[string][]models.Option
	invalidated []string
}

func newMemoryOptionCache() *memoryOptionCache {
	return &memoryOptionCache{entries: map[string][]models.Option{}}
}

func (c *memoryOptionCache) key(kind string, filter models.OptionFilter) string {
	return fmt.Sprintf("%s:%d:%t", kind, filter.OrganizationID, filter.ActiveOnly)
}

func (c *memoryOptionCache) Get(ctx context.Context, kind string, filter models.OptionFilter) ([]models.Option, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	options, ok := c.entries[c.key(kind, filter)]
	return options, ok
}

func (c *memoryOptionCache) Set(ctx context.Context, kind string, filter models.OptionFilter, options []models.Option) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.key(kind, filter)] = options
}

func (c *memoryOptionCache) Invalidate(ctx context.Context, kind string, organizationID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, kind)
	for _, active := range []bool{true, false} {
		delete(c.entries, c.key(kind, models.OptionFilter{OrganizationID: organizationID, ActiveOnly: active}))
	}
	return nil
}

func (c *memoryOptionCache) Close() error                   { return nil }
func (c *memoryOptionCache) Health(ctx context.Context) error { return nil }

func sampleOptions() map[string][]models.Option {
	out := map[string][]models.Option{}
	for i, kind := range models.AllOptionKinds() {
		out[kind] = []models.Option{{ID: int64(i + 1), Label: kind + " one"}}
	}
	return out
}

func TestOptionService_Load_CachesResult(t *testing.T) {
	repo := &mockOptionRepo{options: sampleOptions()}
	optionCache := newMemoryOptionCache()
	svc := NewOptionService(repo, optionCache, discardLogger())
	filter := models.OptionFilter{OrganizationID: 1, ActiveOnly: true}

	first := svc.Load(context.Background(), models.OptionKindVendor, filter)
	second := svc.Load(context.Background(), models.OptionKindVendor, filter)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("loads returned %d and %d options, want 1 each", len(first), len(second))
	}
	if repo.loads != 1 {
		t.Errorf("repository hit %d times, want 1 (second load from cache)", repo.loads)
	}
}

func TestOptionService_Load_FailureYieldsEmptyList(t *testing.T) {
	repo := &mockOptionRepo{
		options: sampleOptions(),
		failing: map[string]bool{models.OptionKindProduct: true},
	}
	svc := NewOptionService(repo, newMemoryOptionCache(), discardLogger())
	filter := models.OptionFilter{OrganizationID: 1}

	options := svc.Load(context.Background(), models.OptionKindProduct, filter)
	if options == nil || len(options) != 0 {
		t.Errorf("failed load = %v, want empty non-nil list", options)
	}
}

func TestOptionService_LoadAll_FaultIsolation(t *testing.T) {
	repo := &mockOptionRepo{
		options: sampleOptions(),
		failing: map[string]bool{models.OptionKindVendor: true},
	}
	svc := NewOptionService(repo, newMemoryOptionCache(), discardLogger())

	results := svc.LoadAll(context.Background(), models.OptionFilter{OrganizationID: 1})

	if len(results) != len(models.AllOptionKinds()) {
		t.Fatalf("results cover %d kinds, want %d", len(results), len(models.AllOptionKinds()))
	}
	if len(results[models.OptionKindVendor]) != 0 {
		t.Error("failing source should yield an empty list")
	}
	for _, kind := range models.AllOptionKinds() {
		if kind == models.OptionKindVendor {
			continue
		}
		if len(results[kind]) != 1 {
			t.Errorf("kind %s = %d options, want 1 despite the vendor failure", kind, len(results[kind]))
		}
	}
}

func TestOptionService_Invalidate(t *testing.T) {
	repo := &mockOptionRepo{options: sampleOptions()}
	optionCache := newMemoryOptionCache()
	svc := NewOptionService(repo, optionCache, discardLogger())
	filter := models.OptionFilter{OrganizationID: 1, ActiveOnly: true}

	svc.Load(context.Background(), models.OptionKindVendor, filter)
	svc.Invalidate(context.Background(), models.OptionKindVendor, 1)
	svc.Load(context.Background(), models.OptionKindVendor, filter)

	if repo.loads != 2 {
		t.Errorf("repository hit %d times, want 2 (cache dropped between loads)", repo.loads)
	}
}
