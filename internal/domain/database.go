package domain

// DatabaseDriver represents the type of database engine.
type DatabaseDriver string

const (
	DatabaseDriverMySQL    DatabaseDriver = "mysql"
	DatabaseDriverPostgres DatabaseDriver = "postgres"
	DatabaseDriverMongoDB  DatabaseDriver = "mongodb"
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"
)

// DatabaseConnection holds the metadata for connecting to an external database.
// The password is resolved separately from the SecretStore under PasswordKey.
type DatabaseConnection struct {
	Driver      DatabaseDriver    `json:"driver" yaml:"driver"`
	Host        string            `json:"host" yaml:"host"`         // hostname, file path (sqlite) or full mongodb URI
	Port        int               `json:"port" yaml:"port"`         // 0 for sqlite
	Database    string            `json:"database" yaml:"database"` // db name or empty for sqlite
	Username    string            `json:"username" yaml:"username"`
	PasswordKey string            `json:"passwordKey" yaml:"password_key"`
	SSLMode     string            `json:"sslMode" yaml:"ssl_mode"`
	Options     map[string]string `json:"options" yaml:"options"` // driver-specific query options
}

// IsSQL reports whether the driver is served through database/sql.
func (c *DatabaseConnection) IsSQL() bool {
	switch c.Driver {
	case DatabaseDriverMySQL, DatabaseDriverPostgres, DatabaseDriverSQLite:
		return true
	}
	return false
}
