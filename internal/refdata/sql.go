package refdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"prodexport/internal/dbclient"
	"prodexport/internal/domain"
)

// Table names used when none are configured.
const (
	DefaultSupplierTable = "suppliers"
	DefaultCategoryTable = "category_names"
	DefaultFamilyTable   = "family_names"
)

// SQLTables names the reference-data tables:
//
//	suppliers(supplier_id, name)
//	category_names(category_id, langid, name)
//	family_names(family_id, langid, name)
type SQLTables struct {
	Suppliers  string
	Categories string
	Families   string
}

func (t *SQLTables) applyDefaults() {
	if t.Suppliers == "" {
		t.Suppliers = DefaultSupplierTable
	}
	if t.Categories == "" {
		t.Categories = DefaultCategoryTable
	}
	if t.Families == "" {
		t.Families = DefaultFamilyTable
	}
}

// SQLStore reads reference data from relational tables.
type SQLStore struct {
	db            *sql.DB
	supplierQuery string
	categoryQuery string
	familyQuery   string
}

// NewSQLStore prepares the lookup queries for the given driver.
func NewSQLStore(db *sql.DB, driver domain.DatabaseDriver, tables SQLTables) (*SQLStore, error) {
	tables.applyDefaults()
	for _, t := range []string{tables.Suppliers, tables.Categories, tables.Families} {
		if !dbclient.ValidIdentifier(t) {
			return nil, fmt.Errorf("invalid table name: %q", t)
		}
	}
	ph := dbclient.Placeholder(driver, 1)
	return &SQLStore{
		db:            db,
		supplierQuery: fmt.Sprintf("SELECT name FROM %s WHERE supplier_id = %s", tables.Suppliers, ph),
		categoryQuery: fmt.Sprintf("SELECT langid, name FROM %s WHERE category_id = %s", tables.Categories, ph),
		familyQuery:   fmt.Sprintf("SELECT langid, name FROM %s WHERE family_id = %s", tables.Families, ph),
	}, nil
}

func (s *SQLStore) FindSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	out := &domain.Supplier{ID: id}
	err := s.db.QueryRowContext(ctx, s.supplierQuery, id).Scan(&out.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("supplier %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("supplier %d: %w", id, err)
	}
	return out, nil
}

func (s *SQLStore) FindCategory(ctx context.Context, id int64) (*domain.Category, error) {
	names, err := s.localizedNames(ctx, s.categoryQuery, id)
	if err != nil {
		return nil, fmt.Errorf("category %d: %w", id, err)
	}
	return &domain.Category{ID: id, PluralNames: names}, nil
}

func (s *SQLStore) FindFamily(ctx context.Context, id int64) (*domain.Family, error) {
	names, err := s.localizedNames(ctx, s.familyQuery, id)
	if err != nil {
		return nil, fmt.Errorf("family %d: %w", id, err)
	}
	return &domain.Family{ID: id, Names: names}, nil
}

// localizedNames returns the langid → name rows for id, ErrNotFound when none.
func (s *SQLStore) localizedNames(ctx context.Context, query string, id int64) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := map[string]string{}
	for rows.Next() {
		var lang, name string
		if err := rows.Scan(&lang, &name); err != nil {
			return nil, err
		}
		names[lang] = name
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, domain.ErrNotFound
	}
	return names, nil
}
