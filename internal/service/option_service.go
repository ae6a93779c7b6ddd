package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/northpoint-auto/dealdesk-backend/internal/cache"
	"github.com/northpoint-auto/dealdesk-backend/internal/models"
	"github.com/northpoint-auto/dealdesk-backend/internal/repository"
)

// OptionService serves dropdown sources to the deal forms. Loads are
// fail-soft: a source that cannot be fetched yields an empty list so the
// rest of the form still opens.
type OptionService interface {
	Load(ctx context.Context, kind string, filter models.OptionFilter) []models.Option
	LoadAll(ctx context.Context, filter models.OptionFilter) map[string][]models.Option
	Invalidate(ctx context.Context, kind string, organizationID int64)
}

type optionService struct {
	optionRepo repository.OptionRepository
	cache      cache.OptionCache
	logger     *slog.Logger
}

// NewOptionService creates a new option service
func NewOptionService(optionRepo repository.OptionRepository, optionCache cache.OptionCache, logger *slog.Logger) OptionService {
	return &optionService{
		optionRepo: optionRepo,
		cache:      optionCache,
		logger:     logger,
	}
}

// Load returns one dropdown source, read-through cached. Errors degrade to
// an empty list and never propagate to the caller.
func (s *optionService) Load(ctx context.Context, kind string, filter models.OptionFilter) []models.Option {
	if options, ok := s.cache.Get(ctx, kind, filter); ok {
		return options
	}

	options, err := s.optionRepo.LoadOptions(ctx, kind, filter)
	if err != nil {
		s.logger.Warn("option load failed, serving empty list",
			slog.String("kind", kind),
			slog.Int64("organization_id", filter.OrganizationID),
			slog.String("error", err.Error()),
		)
		return []models.Option{}
	}

	s.cache.Set(ctx, kind, filter, options)
	return options
}

// LoadAll fetches every dropdown source the wizard needs, concurrently.
// Each load is individually fault-isolated.
func (s *optionService) LoadAll(ctx context.Context, filter models.OptionFilter) map[string][]models.Option {
	kinds := models.AllOptionKinds()
	results := make(map[string][]models.Option, len(kinds))

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, kind := range kinds {
		wg.Add(1)
		go func(kind string) {
			defer wg.Done()
			options := s.Load(ctx, kind, filter)
			mu.Lock()
			results[kind] = options
			mu.Unlock()
		}(kind)
	}

	wg.Wait()
	return results
}

// Invalidate drops the cached lists for a kind after an admin write
func (s *optionService) Invalidate(ctx context.Context, kind string, organizationID int64) {
	if err := s.cache.Invalidate(ctx, kind, organizationID); err != nil {
		s.logger.Warn("option cache invalidation failed",
			slog.String("kind", kind),
			slog.Int64("organization_id", organizationID),
			slog.String("error", err.Error()),
		)
	}
}
