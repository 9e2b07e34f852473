package etl

import (
	"context"
	"errors"
	"log/slog"

	"prodexport/internal/domain"
)

// ── NameCache ──────────────────────────────────────────────
// Memoizes reference-data display names for one export run.
//
// Only successful lookups are memoized. An id that fails to resolve is
// looked up again every time it is requested, so a persistently missing
// id costs one store round-trip per occurrence.

// DomainStats counts NameCache activity for one reference-data domain.
type DomainStats struct {
	Hits       int `json:"hits"`
	Lookups    int `json:"lookups"`
	Unresolved int `json:"unresolved"`
}

// CacheStats is a snapshot of NameCache activity per domain.
type CacheStats map[domain.RefDomain]DomainStats

// NameCache resolves supplier, category and family ids to names.
// It is not safe for concurrent use; a pipeline run owns its cache.
type NameCache struct {
	store  domain.ReferenceStore
	names  map[domain.RefDomain]map[int64]string
	stats  map[domain.RefDomain]*DomainStats
	logger *slog.Logger
}

// NewNameCache creates an empty cache backed by store.
func NewNameCache(store domain.ReferenceStore) *NameCache {
	c := &NameCache{
		store:  store,
		names:  make(map[domain.RefDomain]map[int64]string, len(domain.RefDomains)),
		stats:  make(map[domain.RefDomain]*DomainStats, len(domain.RefDomains)),
		logger: slog.Default(),
	}
	for _, d := range domain.RefDomains {
		c.names[d] = make(map[int64]string)
		c.stats[d] = &DomainStats{}
	}
	return c
}

// Resolve returns the name for id in the given domain.
// The bool is false when the store has no usable name.
func (c *NameCache) Resolve(ctx context.Context, d domain.RefDomain, id int64) (string, bool) {
	names, ok := c.names[d]
	if !ok {
		return "", false
	}
	st := c.stats[d]
	if name, hit := names[id]; hit {
		st.Hits++
		return name, true
	}

	st.Lookups++
	name, found, err := c.load(ctx, d, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		c.logger.Warn("reference lookup failed", "domain", d, "id", id, "error", err)
	}
	if !found {
		st.Unresolved++
		return "", false
	}
	names[id] = name
	return name, true
}

// SetLogger sets the logger lookup failures are reported to.
func (c *NameCache) SetLogger(l *slog.Logger) { c.logger = l }

// Supplier resolves a supplier display name.
func (c *NameCache) Supplier(ctx context.Context, id int64) (string, bool) {
	return c.Resolve(ctx, domain.RefSupplier, id)
}

// Category resolves the English plural category name.
func (c *NameCache) Category(ctx context.Context, id int64) (string, bool) {
	return c.Resolve(ctx, domain.RefCategory, id)
}

// Family resolves the English family name.
func (c *NameCache) Family(ctx context.Context, id int64) (string, bool) {
	return c.Resolve(ctx, domain.RefFamily, id)
}

// Stats returns a copy of the per-domain counters.
func (c *NameCache) Stats() CacheStats {
	out := make(CacheStats, len(c.stats))
	for d, st := range c.stats {
		out[d] = *st
	}
	return out
}

// load issues exactly one store call for id.
func (c *NameCache) load(ctx context.Context, d domain.RefDomain, id int64) (string, bool, error) {
	switch d {
	case domain.RefSupplier:
		s, err := c.store.FindSupplier(ctx, id)
		if err != nil || s == nil {
			return "", false, err
		}
		return s.Name, true, nil

	case domain.RefCategory:
		cat, err := c.store.FindCategory(ctx, id)
		if err != nil || cat == nil {
			return "", false, err
		}
		name, ok := cat.PluralNames[domain.LanguageIDEN]
		return name, ok, nil

	case domain.RefFamily:
		fam, err := c.store.FindFamily(ctx, id)
		if err != nil || fam == nil {
			return "", false, err
		}
		name, ok := fam.Names[domain.LanguageIDEN]
		return name, ok, nil
	}
	return "", false, nil
}
