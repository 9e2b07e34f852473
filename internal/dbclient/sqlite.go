package dbclient

import (
	"net/url"

	"prodexport/internal/domain"

	_ "modernc.org/sqlite"
)

// buildSQLiteDSN opens the file with a busy timeout so an export can run
// next to a writer. Options are passed through as extra query parameters.
func buildSQLiteDSN(conn *domain.DatabaseConnection) string {
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(5000)")
	for k, v := range conn.Options {
		q.Add(k, v)
	}
	return conn.Host + "?" + q.Encode()
}
