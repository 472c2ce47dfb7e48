package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/docflow/internal/domain/document"
)

// TaxCache stores resolved tax codes for a bounded time. Tax tables
// change rarely but are consulted on every line edit, so a small cache
// keeps recalculation off the database.
type TaxCache interface {
	// Get returns the cached tax for a code, or nil on a miss
	Get(ctx context.Context, code string) (*document.Tax, error)

	// Set stores a resolved tax
	Set(ctx context.Context, tax *document.Tax) error

	// Invalidate drops a cached code
	Invalidate(ctx context.Context, code string) error
}

// taxEntry wraps a cached tax with its expiration time
type taxEntry struct {
	tax       document.Tax
	expiresAt time.Time
}

func (e *taxEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryTaxCache implements TaxCache with process-local storage
type InMemoryTaxCache struct {
	entries sync.Map // map[string]*taxEntry
	ttl     time.Duration
}

// NewInMemoryTaxCache creates an in-memory tax cache with the given TTL
func NewInMemoryTaxCache(ttl time.Duration) *InMemoryTaxCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &InMemoryTaxCache{ttl: ttl}
}

// Get implements TaxCache
func (c *InMemoryTaxCache) Get(_ context.Context, code string) (*document.Tax, error) {
	value, ok := c.entries.Load(code)
	if !ok {
		return nil, nil
	}
	entry := value.(*taxEntry)
	if entry.isExpired() {
		c.entries.Delete(code)
		return nil, nil
	}
	tax := entry.tax
	return &tax, nil
}

// Set implements TaxCache
func (c *InMemoryTaxCache) Set(_ context.Context, tax *document.Tax) error {
	c.entries.Store(tax.Code, &taxEntry{tax: *tax, expiresAt: time.Now().Add(c.ttl)})
	return nil
}

// Invalidate implements TaxCache
func (c *InMemoryTaxCache) Invalidate(_ context.Context, code string) error {
	c.entries.Delete(code)
	return nil
}

// CachedTaxLookup is a read-through TaxLookup: hits are served from the
// cache, misses fall through to the inner lookup and are cached on the
// way back. Lookup failures are never cached.
type CachedTaxLookup struct {
	inner document.TaxLookup
	cache TaxCache
}

// NewCachedTaxLookup wraps a TaxLookup with a cache
func NewCachedTaxLookup(inner document.TaxLookup, cache TaxCache) *CachedTaxLookup {
	return &CachedTaxLookup{inner: inner, cache: cache}
}

// TaxByCode implements document.TaxLookup
func (l *CachedTaxLookup) TaxByCode(ctx context.Context, code string) (*document.Tax, error) {
	if cached, err := l.cache.Get(ctx, code); err == nil && cached != nil {
		return cached, nil
	}

	tax, err := l.inner.TaxByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	// A Set failure only costs the next caller a database round trip.
	_ = l.cache.Set(ctx, tax)
	return tax, nil
}
