package dbclient

import (
	"sort"
	"strconv"
	"strings"

	"prodexport/internal/domain"

	_ "github.com/lib/pq"
)

// buildPostgresDSN builds a keyword/value connection string. Values are
// quoted so passwords with spaces or quotes survive.
func buildPostgresDSN(conn *domain.DatabaseConnection, password string) string {
	port := conn.Port
	if port == 0 {
		port = 5432
	}
	sslMode := conn.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	params := map[string]string{
		"host":             conn.Host,
		"port":             strconv.Itoa(port),
		"user":             conn.Username,
		"password":         password,
		"dbname":           conn.Database,
		"sslmode":          sslMode,
		"connect_timeout":  "10",
		"application_name": "prodexport",
	}
	for k, v := range conn.Options {
		params[k] = v
	}

	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + quotePQ(params[k])
	}
	return strings.Join(parts, " ")
}

// quotePQ quotes v for a libpq keyword/value string when needed.
func quotePQ(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
