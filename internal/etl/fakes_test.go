package etl_test

import (
	"context"
	"errors"

	"prodexport/internal/domain"
)

// refStore is an in-memory ReferenceStore that counts store calls per domain.
type refStore struct {
	suppliers  map[int64]string
	categories map[int64]map[string]string
	families   map[int64]map[string]string
	failWith   error

	calls map[domain.RefDomain]int
}

func newRefStore() *refStore {
	return &refStore{
		suppliers: map[int64]string{1: "HP", 2: "Hewlett-Packard", 3: "Canon"},
		categories: map[int64]map[string]string{
			10: {"1": "Printers", "2": "Drucker"},
			11: {"2": "Scanner"}, // no English name
		},
		families: map[int64]map[string]string{
			5: {"1": "LaserJet Pro"},
		},
		calls: map[domain.RefDomain]int{},
	}
}

func (s *refStore) FindSupplier(_ context.Context, id int64) (*domain.Supplier, error) {
	s.calls[domain.RefSupplier]++
	if s.failWith != nil {
		return nil, s.failWith
	}
	name, ok := s.suppliers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Supplier{ID: id, Name: name}, nil
}

func (s *refStore) FindCategory(_ context.Context, id int64) (*domain.Category, error) {
	s.calls[domain.RefCategory]++
	if s.failWith != nil {
		return nil, s.failWith
	}
	names, ok := s.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Category{ID: id, PluralNames: names}, nil
}

func (s *refStore) FindFamily(_ context.Context, id int64) (*domain.Family, error) {
	s.calls[domain.RefFamily]++
	if s.failWith != nil {
		return nil, s.failWith
	}
	names, ok := s.families[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Family{ID: id, Names: names}, nil
}

var errStoreDown = errors.New("reference store unavailable")
