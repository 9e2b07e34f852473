package refdata_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodexport/internal/dbclient"
	"prodexport/internal/domain"
	"prodexport/internal/etl"
	"prodexport/internal/refdata"
)

func newSQLStore(t *testing.T) *refdata.SQLStore {
	t.Helper()
	conn := &domain.DatabaseConnection{Driver: domain.DatabaseDriverSQLite, Host: filepath.Join(t.TempDir(), "ref.db")}
	db, err := dbclient.OpenSQL(conn, "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, stmt := range []string{
		`CREATE TABLE suppliers (supplier_id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`CREATE TABLE category_names (category_id INTEGER, langid INTEGER, name TEXT)`,
		`CREATE TABLE family_names (family_id INTEGER, langid INTEGER, name TEXT)`,
		`INSERT INTO suppliers VALUES (1, 'HP')`,
		`INSERT INTO category_names VALUES (10, 1, 'Printers'), (10, 2, 'Drucker'), (11, 2, 'Scanner')`,
		`INSERT INTO family_names VALUES (5, 1, 'LaserJet Pro')`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	store, err := refdata.NewSQLStore(db, conn.Driver, refdata.SQLTables{})
	require.NoError(t, err)
	return store
}

func TestSQLStore_FindSupplier(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	s, err := store.FindSupplier(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &domain.Supplier{ID: 1, Name: "HP"}, s)

	_, err = store.FindSupplier(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLStore_FindCategory(t *testing.T) {
	store := newSQLStore(t)
	ctx := context.Background()

	c, err := store.FindCategory(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "Printers", "2": "Drucker"}, c.PluralNames)

	_, err = store.FindCategory(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLStore_FindFamily(t *testing.T) {
	store := newSQLStore(t)
	f, err := store.FindFamily(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "LaserJet Pro", f.Names["1"])
}

func TestSQLStore_BacksNameCache(t *testing.T) {
	cache := etl.NewNameCache(newSQLStore(t))
	ctx := context.Background()

	name, ok := cache.Category(ctx, 10)
	assert.True(t, ok)
	assert.Equal(t, "Printers", name)

	_, ok = cache.Category(ctx, 11)
	assert.False(t, ok, "no English plural name")
}

func TestNewSQLStore_RejectsBadTableNames(t *testing.T) {
	_, err := refdata.NewSQLStore(&sql.DB{}, domain.DatabaseDriverPostgres, refdata.SQLTables{Suppliers: "suppliers--"})
	assert.Error(t, err)
}
