package etl

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// ── Source ──────────────────────────────────────────────────
// A RecordSource yields raw product documents from the product pool.
// Implementations live in etl/sources/, one file per backend.

// RecordSource is a lazy, finite, forward-only sequence of raw records.
// Next returns io.EOF once the sequence is exhausted. There is no rewind and
// callers must not call Next concurrently.
type RecordSource interface {
	Next(ctx context.Context) (RawRecord, error)
	Close() error
}

// SourceConfig is an opaque configuration map parsed per source type.
type SourceConfig map[string]any

// String returns cfg[key] as a string, or def when unset.
func (c SourceConfig) String(key, def string) string {
	if v, ok := c[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Int returns cfg[key] as an int, or def when unset or not numeric.
func (c SourceConfig) Int(key string, def int) int {
	switch n := c[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return def
}

// Provider opens record sources of one type.
type Provider interface {
	// Type is the registry key, e.g. "sql" or "ndjson".
	Type() string

	// Open starts a new pass over the pool at offset. The meaning of the
	// offset is provider specific (first product id, lines to skip).
	Open(ctx context.Context, cfg SourceConfig, offset int64) (RecordSource, error)
}

// ── Source Registry ────────────────────────────────────────
// Compile-time registration via init() in each source file.

var (
	registryMu sync.RWMutex
	registry   = map[string]Provider{}
)

// RegisterSource registers a provider by its type.
// Called from init() in each source implementation file.
func RegisterSource(p Provider) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[p.Type()] = p
}

// OpenSource opens a record source of the given registered type.
func OpenSource(ctx context.Context, typ string, cfg SourceConfig, offset int64) (RecordSource, error) {
	registryMu.RLock()
	p, ok := registry[typ]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown source type: %q", typ)
	}
	return p.Open(ctx, cfg, offset)
}

// ListSources returns the registered source types, sorted.
func ListSources() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// ── In-memory Source ───────────────────────────────────────

// SliceSource serves records from memory in order.
type SliceSource struct {
	records []RawRecord
	pos     int
	closed  bool
}

// NewSliceSource returns a source over the given documents.
func NewSliceSource(docs ...string) *SliceSource {
	records := make([]RawRecord, len(docs))
	for i, d := range docs {
		records[i] = RawRecord(d)
	}
	return &SliceSource{records: records}
}

func (s *SliceSource) Next(ctx context.Context) (RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed || s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

func (s *SliceSource) Close() error {
	s.closed = true
	return nil
}
