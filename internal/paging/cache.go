package paging

import (
	"context"
	"log/slog"
	"math"
)

type entry[T any] struct {
	value T
	ok    bool
}

// PagedCache paginates and caches one resource.
type PagedCache[T any] struct {
	id      string
	current Page
	max     MaxPage
	entries map[Page]entry[T]
	source  Source[T]
	logger  *slog.Logger

	// first holds page 1 as fetched by Init until a read of page 1 uses it.
	first *Raw
	// initialized is set once Init has fetched page 1.
	initialized bool
}

// New returns an empty cache for id with the cursor at start.
func New[T any](id string, start Page, source Source[T], logger *slog.Logger) *PagedCache[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PagedCache[T]{
		id:      id,
		current: start,
		entries: make(map[Page]entry[T]),
		source:  source,
		logger:  logger,
	}
}

// ID returns the resource id.
func (c *PagedCache[T]) ID() string { return c.id }

// Page returns the cursor position.
func (c *PagedCache[T]) Page() Page { return c.current }

// Max returns the discovered upper bound.
func (c *PagedCache[T]) Max() MaxPage { return c.max }

// SetPage moves the cursor without any bounds adjustment. Callers clamp.
func (c *PagedCache[T]) SetPage(p Page) { c.current = p }

// Len returns the number of cached pages, failures included.
func (c *PagedCache[T]) Len() int { return len(c.entries) }

// Cached returns the cached result for page. present is false when the page
// has never been stored.
func (c *PagedCache[T]) Cached(page Page) (value T, ok bool, present bool) {
	e, present := c.entries[page]
	return e.value, e.ok, present
}

// Init fetches page 1, records the upper bound and keeps the payload so the
// next read of page 1 does not hit the source again. It does nothing once it
// has succeeded; after a failure it may be called again. A cached failure of
// page 1 is dropped when Init succeeds.
func (c *PagedCache[T]) Init(ctx context.Context) {
	if c.initialized {
		return
	}
	raw, err := c.source.FetchPage(ctx, c.id, FirstPage)
	if err != nil {
		c.logger.Debug("init fetch failed", "resource", c.id, "err", err)
		return
	}
	c.initialized = true
	if bound, ok := c.source.ExtractMax(raw); ok && !c.max.Known() {
		c.max = bound
	}
	c.first = &raw
	if e, ok := c.entries[FirstPage]; ok && !e.ok {
		delete(c.entries, FirstPage)
	}
}

// Initialized reports whether Init has fetched page 1.
func (c *PagedCache[T]) Initialized() bool { return c.initialized }

// AtFirst reports whether the cursor sits on the below-first boundary.
func (c *PagedCache[T]) AtFirst() bool { return c.current == 0 }

// AtLast reports whether the cursor is at or past the known upper bound.
func (c *PagedCache[T]) AtLast() bool {
	return c.max.Known() && uint16(c.current) >= uint16(c.max)
}

// Get returns page without writing to the cache. Pages outside the bound
// are rejected before any I/O. With ignoreCache the source is always asked.
func (c *PagedCache[T]) Get(ctx context.Context, page Page, ignoreCache bool) (T, bool) {
	return c.get(ctx, page, ignoreCache, false)
}

// GetAndCache behaves like Get and stores the result, failures included.
// Rejected pages are never stored.
func (c *PagedCache[T]) GetAndCache(ctx context.Context, page Page, ignoreCache bool) (T, bool) {
	return c.get(ctx, page, ignoreCache, true)
}

func (c *PagedCache[T]) Current(ctx context.Context) (T, bool) {
	return c.Get(ctx, c.current, false)
}

func (c *PagedCache[T]) CurrentAndCache(ctx context.Context) (T, bool) {
	return c.GetAndCache(ctx, c.current, false)
}

func (c *PagedCache[T]) CurrentForce(ctx context.Context) (T, bool) {
	return c.Get(ctx, c.current, true)
}

func (c *PagedCache[T]) CurrentForceAndCache(ctx context.Context) (T, bool) {
	return c.GetAndCache(ctx, c.current, true)
}

// Next advances the cursor and reads the new page through the cache. At the
// known last page it returns false and leaves the cursor alone.
func (c *PagedCache[T]) Next(ctx context.Context) (T, bool) {
	return c.next(ctx, false)
}

// ForceNext is Next with a fresh fetch.
func (c *PagedCache[T]) ForceNext(ctx context.Context) (T, bool) {
	return c.next(ctx, true)
}

// Previous moves the cursor back and reads the new page through the cache.
// At the below-first boundary it returns false and the cursor stays at 0.
func (c *PagedCache[T]) Previous(ctx context.Context) (T, bool) {
	return c.previous(ctx, false)
}

// ForcePrevious is Previous with a fresh fetch.
func (c *PagedCache[T]) ForcePrevious(ctx context.Context) (T, bool) {
	return c.previous(ctx, true)
}

func (c *PagedCache[T]) next(ctx context.Context, force bool) (T, bool) {
	if c.AtLast() || c.current == math.MaxUint16 {
		var zero T
		return zero, false
	}
	c.current++
	return c.GetAndCache(ctx, c.current, force)
}

func (c *PagedCache[T]) previous(ctx context.Context, force bool) (T, bool) {
	if c.AtFirst() {
		var zero T
		return zero, false
	}
	c.current--
	return c.GetAndCache(ctx, c.current, force)
}

func (c *PagedCache[T]) get(ctx context.Context, page Page, ignoreCache, store bool) (T, bool) {
	var zero T
	if page == 0 || !c.max.Admits(page) {
		return zero, false
	}
	if !ignoreCache {
		if e, ok := c.entries[page]; ok {
			return e.value, e.ok
		}
	}
	value, ok := c.load(ctx, page)
	if store {
		c.entries[page] = entry[T]{value: value, ok: ok}
	}
	return value, ok
}

// load fetches and decodes page. The payload kept by Init serves exactly one
// read of page 1.
func (c *PagedCache[T]) load(ctx context.Context, page Page) (T, bool) {
	var zero T
	var raw Raw
	if page == FirstPage && c.first != nil {
		raw = *c.first
		c.first = nil
	} else {
		fetched, err := c.source.FetchPage(ctx, c.id, page)
		if err != nil {
			c.logger.Debug("fetch failed", "resource", c.id, "page", page, "err", err)
			return zero, false
		}
		raw = fetched
	}
	value, err := c.source.Parse(raw)
	if err != nil {
		c.logger.Debug("parse failed", "resource", c.id, "page", page, "url", raw.URL, "err", err)
		return zero, false
	}
	return value, true
}
