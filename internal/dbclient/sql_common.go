package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"prodexport/internal/domain"
)

var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdentifier reports whether name is safe to splice into SQL as a
// table or column name.
func ValidIdentifier(name string) bool {
	return identRegex.MatchString(name)
}

// KeyValue is one (key, value) pair read by a KeysetPager.
type KeyValue struct {
	Key   int64
	Value []byte
}

// KeysetPager reads a (key, value) table in key order, one page per call,
// without holding a cursor open between pages.
type KeysetPager struct {
	db       *sql.DB
	query    string
	pageSize int

	next      int64
	inclusive bool
	done      bool
}

// NewKeysetPager pages through table starting at key >= from.
func NewKeysetPager(db *sql.DB, driver domain.DatabaseDriver, table, keyCol, valueCol string, from int64, pageSize int) (*KeysetPager, error) {
	for _, ident := range []string{table, keyCol, valueCol} {
		if !ValidIdentifier(ident) {
			return nil, fmt.Errorf("invalid identifier: %q", ident)
		}
	}
	if pageSize <= 0 {
		pageSize = 500
	}
	// Two statements differ only in the comparison; the first page is inclusive.
	query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s %%s %s ORDER BY %s LIMIT %s",
		keyCol, valueCol, table, keyCol, Placeholder(driver, 1), keyCol, Placeholder(driver, 2))
	return &KeysetPager{db: db, query: query, pageSize: pageSize, next: from, inclusive: true}, nil
}

// FetchPage returns the next page; an empty page means the table is exhausted.
func (p *KeysetPager) FetchPage(ctx context.Context) ([]KeyValue, error) {
	if p.done {
		return nil, nil
	}
	op := ">"
	if p.inclusive {
		op = ">="
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, fmt.Sprintf(p.query, op), p.next, p.pageSize)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	page := make([]KeyValue, 0, p.pageSize)
	for rows.Next() {
		var kv KeyValue
		var value sql.RawBytes
		if err := rows.Scan(&kv.Key, &value); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		kv.Value = append([]byte(nil), value...)
		page = append(page, kv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if len(page) < p.pageSize {
		p.done = true
	}
	if len(page) > 0 {
		p.next = page[len(page)-1].Key
		p.inclusive = false
	}
	return page, nil
}
