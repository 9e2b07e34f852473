package sources

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"prodexport/internal/dbclient"
	"prodexport/internal/domain"
	"prodexport/internal/etl"
)

// ── SQL Source ─────────────────────────────────────────────
// Reads the product pool from a (product_id, value) table through
// database/sql. Works with MySQL, Postgres and SQLite.

// Defaults for the SQL product pool table.
const (
	DefaultTable       = "product_info"
	DefaultKeyColumn   = "product_id"
	DefaultValueColumn = "value"
	DefaultBatchSize   = 500
)

type sqlProvider struct{}

func init() { etl.RegisterSource(&sqlProvider{}) }

func (p *sqlProvider) Type() string { return "sql" }

// Open expects cfg["connection"] (*domain.DatabaseConnection) and
// cfg["password"]; "table", "keyColumn", "valueColumn", "batchSize" are optional.
func (p *sqlProvider) Open(ctx context.Context, cfg etl.SourceConfig, offset int64) (etl.RecordSource, error) {
	conn, ok := cfg["connection"].(*domain.DatabaseConnection)
	if !ok || conn == nil {
		return nil, fmt.Errorf("sql source: connection is required")
	}
	if !conn.IsSQL() {
		return nil, fmt.Errorf("sql source: unsupported driver %q", conn.Driver)
	}
	db, err := dbclient.OpenSQL(conn, cfg.String("password", ""))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sql source: ping: %w", err)
	}

	src, err := NewSQLSource(db, conn.Driver, SQLSourceOptions{
		Table:       cfg.String("table", DefaultTable),
		KeyColumn:   cfg.String("keyColumn", DefaultKeyColumn),
		ValueColumn: cfg.String("valueColumn", DefaultValueColumn),
		BatchSize:   cfg.Int("batchSize", DefaultBatchSize),
	}, offset)
	if err != nil {
		db.Close()
		return nil, err
	}
	src.ownsDB = true
	return src, nil
}

// SQLSourceOptions names the pool table and its columns.
type SQLSourceOptions struct {
	Table       string
	KeyColumn   string
	ValueColumn string
	BatchSize   int
}

// SQLSource yields records page by page in product id order.
type SQLSource struct {
	db     *sql.DB
	pager  *dbclient.KeysetPager
	page   []dbclient.KeyValue
	ownsDB bool
}

// NewSQLSource reads from db starting at product id offset. The caller keeps
// ownership of db.
func NewSQLSource(db *sql.DB, driver domain.DatabaseDriver, opts SQLSourceOptions, offset int64) (*SQLSource, error) {
	if opts.Table == "" {
		opts.Table = DefaultTable
	}
	if opts.KeyColumn == "" {
		opts.KeyColumn = DefaultKeyColumn
	}
	if opts.ValueColumn == "" {
		opts.ValueColumn = DefaultValueColumn
	}
	pager, err := dbclient.NewKeysetPager(db, driver, opts.Table, opts.KeyColumn, opts.ValueColumn, offset, opts.BatchSize)
	if err != nil {
		return nil, err
	}
	return &SQLSource{db: db, pager: pager}, nil
}

func (s *SQLSource) Next(ctx context.Context) (etl.RawRecord, error) {
	if len(s.page) == 0 {
		page, err := s.pager.FetchPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch page: %w", err)
		}
		if len(page) == 0 {
			return nil, io.EOF
		}
		s.page = page
	}
	rec := s.page[0]
	s.page = s.page[1:]
	return etl.RawRecord(rec.Value), nil
}

func (s *SQLSource) Close() error {
	s.page = nil
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
