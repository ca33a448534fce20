package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEMPLATE CACHE
// ══════════════════════════════════════════════════════════════════════════════

// templateStore is the slice of the cache client the decorator uses.
type templateStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// TemplateCache is a read-through cache in front of a TemplateProvider.
// Curriculum templates are looked up on every specialization creation and
// resolution, and change only when a new program is published.
type TemplateCache struct {
	cache    templateStore
	fallback specialization.TemplateProvider
	logger   *slog.Logger
}

// NewTemplateCache creates a caching decorator over a template provider.
func NewTemplateCache(cache *Cache, fallback specialization.TemplateProvider, logger *slog.Logger) *TemplateCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateCache{
		cache:    cache,
		fallback: fallback,
		logger:   logger.With("component", "template_cache"),
	}
}

// Get implements specialization.TemplateProvider.
func (tc *TemplateCache) Get(ctx context.Context, programCode string, version shared.SmkVersion) (*specialization.CurriculumTemplate, error) {
	key := TemplateKey(programCode, version.String())

	var cached specialization.CurriculumTemplate
	err := tc.cache.Get(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		// Redis trouble must not take template lookups down.
		tc.logger.Warn("template cache read failed", "key", key, "error", err)
	}

	tmpl, err := tc.fallback.Get(ctx, programCode, version)
	if err != nil {
		return nil, err
	}

	if err := tc.cache.Set(ctx, key, tmpl, TTLTemplateCache); err != nil {
		tc.logger.Warn("template cache write failed", "key", key, "error", err)
	}

	return tmpl, nil
}

// Invalidate drops a cached template, forcing the next Get to hit the source.
func (tc *TemplateCache) Invalidate(ctx context.Context, programCode string, version shared.SmkVersion) error {
	return tc.cache.Delete(ctx, TemplateKey(programCode, version.String()))
}
