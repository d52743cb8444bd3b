package paging

import (
	"context"
	"log/slog"
)

// Registry owns one PagedCache per resource id. Entries live as long as the
// registry; nothing is evicted.
type Registry[T any] struct {
	source Source[T]
	logger *slog.Logger
	caches map[string]*PagedCache[T]
}

func NewRegistry[T any](source Source[T], logger *slog.Logger) *Registry[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry[T]{
		source: source,
		logger: logger,
		caches: make(map[string]*PagedCache[T]),
	}
}

// GetOrCreate returns the cache for id. A missing cache is created with the
// cursor at start and initialized before it is stored; created reports that.
// An existing cache whose Init failed is initialized again.
func (r *Registry[T]) GetOrCreate(ctx context.Context, id string, start Page) (cache *PagedCache[T], created bool) {
	if c, ok := r.caches[id]; ok {
		if !c.Initialized() {
			c.Init(ctx)
			r.logger.Debug("resource init retried", "resource", id, "ok", c.Initialized(), "max", c.Max())
		}
		return c, false
	}
	c := New(id, start, r.source, r.logger)
	c.Init(ctx)
	r.caches[id] = c
	r.logger.Debug("resource created", "resource", id, "max", c.Max())
	return c, true
}

// Len returns the number of resources.
func (r *Registry[T]) Len() int { return len(r.caches) }
