// Package cache holds the explicit dropdown-option cache. Ownership is
// deliberate: the option loader is the only writer, and admin CRUD paths
// invalidate through it, replacing ambient module-level caches.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/northpoint-auto/dealdesk-backend/internal/models"
)

// OptionCache defines the interface for the dropdown-option cache
type OptionCache interface {
	// Get returns the cached option list, or (nil, false) on miss
	Get(ctx context.Context, kind string, filter models.OptionFilter) ([]models.Option, bool)

	// Set stores an option list under the kind/filter key
	Set(ctx context.Context, kind string, filter models.OptionFilter, options []models.Option)

	// Invalidate drops every cached list for the kind within the organization
	Invalidate(ctx context.Context, kind string, organizationID int64) error

	// Close closes the cache connection
	Close() error

	// Health checks if the cache is healthy
	Health(ctx context.Context) error
}

// redisOptionCache implements OptionCache using Redis
type redisOptionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Config holds cache configuration
type Config struct {
	URL string
	TTL time.Duration
}

// NewRedisOptionCache creates a new Redis-backed option cache
func NewRedisOptionCache(cfg Config, logger *slog.Logger) (OptionCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("connected to Redis option cache",
		slog.String("addr", opts.Addr),
		slog.Duration("ttl", cfg.TTL),
	)

	return &redisOptionCache{
		client: client,
		ttl:    cfg.TTL,
		logger: logger,
	}, nil
}

// cacheKey builds the per-kind, per-scope key
func cacheKey(kind string, filter models.OptionFilter) string {
	return fmt.Sprintf("options:%s:%d:%t", kind, filter.OrganizationID, filter.ActiveOnly)
}

// Get returns the cached option list for the kind/filter, if present.
// Cache failures are soft: the caller falls through to the database.
func (c *redisOptionCache) Get(ctx context.Context, kind string, filter models.OptionFilter) ([]models.Option, bool) {
	data, err := c.client.Get(ctx, cacheKey(kind, filter)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("option cache read failed",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	var options []models.Option
	if err := json.Unmarshal(data, &options); err != nil {
		c.logger.Warn("option cache entry corrupt, dropping",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		c.client.Del(ctx, cacheKey(kind, filter))
		return nil, false
	}

	return options, true
}

// Set stores the option list with the configured TTL
func (c *redisOptionCache) Set(ctx context.Context, kind string, filter models.OptionFilter, options []models.Option) {
	data, err := json.Marshal(options)
	if err != nil {
		c.logger.Warn("failed to marshal options for cache",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := c.client.Set(ctx, cacheKey(kind, filter), data, c.ttl).Err(); err != nil {
		c.logger.Warn("option cache write failed",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
		)
	}
}

// Invalidate removes both the active-only and all-rows entries for the kind
func (c *redisOptionCache) Invalidate(ctx context.Context, kind string, organizationID int64) error {
	keys := []string{
		cacheKey(kind, models.OptionFilter{OrganizationID: organizationID, ActiveOnly: true}),
		cacheKey(kind, models.OptionFilter{OrganizationID: organizationID, ActiveOnly: false}),
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate option cache: %w", err)
	}

	c.logger.Debug("option cache invalidated",
		slog.String("kind", kind),
		slog.Int64("organization_id", organizationID),
	)

	return nil
}

// Close closes the Redis connection
func (c *redisOptionCache) Close() error {
	return c.client.Close()
}

// Health checks if Redis is healthy
func (c *redisOptionCache) Health(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("option cache health check failed: %w", err)
	}
	return nil
}
