// Package config loads the exporter configuration from YAML with defaults
// and PRODEXPORT_SECTION_FIELD environment overrides.
package config

import "prodexport/internal/domain"

// Config is the root configuration.
type Config struct {
	Export    ExportConfig    `yaml:"export"`
	Source    SourceConfig    `yaml:"source"`
	Reference ReferenceConfig `yaml:"reference"`
	Staging   StagingConfig   `yaml:"staging"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	History   HistoryConfig   `yaml:"history"`
}

// ExportConfig controls the export file and where it is staged.
type ExportConfig struct {
	// BaseDir is where the export file is written. Empty means the OS temp dir.
	BaseDir           string `yaml:"base_dir"`
	FilePrefix        string `yaml:"file_prefix"`
	Extension         string `yaml:"extension"`
	Container         string `yaml:"container"`
	ObjectName        string `yaml:"object_name"`
	ArchiveObjectName string `yaml:"archive_object_name"`
	Offset            int64  `yaml:"offset"`
}

// Source types.
const (
	SourceSQL    = "sql"
	SourceMongo  = "mongo"
	SourceNDJSON = "ndjson"
)

// SourceConfig selects the product pool.
type SourceConfig struct {
	Type       string                     `yaml:"type"`
	Connection *domain.DatabaseConnection `yaml:"connection"`
	Table      string                     `yaml:"table"`
	Collection string                     `yaml:"collection"`
	FilePath   string                     `yaml:"file_path"`
	BatchSize  int                        `yaml:"batch_size"`
}

// Reference backends.
const (
	ReferenceMongo = "mongodb"
	ReferenceSQL   = "sql"
)

// ReferenceConfig selects the reference-data store. Suppliers, Categories and
// Families are collection names for mongodb and table names for sql.
type ReferenceConfig struct {
	Backend    string                     `yaml:"backend"`
	Connection *domain.DatabaseConnection `yaml:"connection"`
	Suppliers  string                     `yaml:"suppliers"`
	Categories string                     `yaml:"categories"`
	Families   string                     `yaml:"families"`
}

// Staging backends.
const (
	StagingGridFS = "gridfs"
	StagingDir    = "dir"
)

// StagingConfig selects the object store.
type StagingConfig struct {
	Backend    string                     `yaml:"backend"`
	Connection *domain.DatabaseConnection `yaml:"connection"`
	Dir        string                     `yaml:"dir"`
}

// LoggingConfig configures slog.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus textfile export.
// An empty TextfilePath disables it.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

// HistoryConfig configures the local run-history database.
type HistoryConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}
