package dbclient

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"prodexport/internal/domain"
)

// OpenSQL opens a database/sql pool for a MySQL, Postgres or SQLite connection.
// The password must be provided separately (from SecretStore).
func OpenSQL(conn *domain.DatabaseConnection, password string) (*sql.DB, error) {
	var driverName, dsn string
	switch conn.Driver {
	case domain.DatabaseDriverSQLite:
		driverName, dsn = "sqlite", buildSQLiteDSN(conn)
	case domain.DatabaseDriverMySQL:
		driverName, dsn = "mysql", buildMySQLDSN(conn, password)
	case domain.DatabaseDriverPostgres:
		driverName, dsn = "postgres", buildPostgresDSN(conn, password)
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", conn.Driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	// One export reads sequentially; a small pool is enough.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)
	if conn.Driver == domain.DatabaseDriverSQLite {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Placeholder returns the n-th (1-based) bind parameter for the driver.
func Placeholder(driver domain.DatabaseDriver, n int) string {
	if driver == domain.DatabaseDriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}
