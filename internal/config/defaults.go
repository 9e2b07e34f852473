package config

import (
	"os"
	"path/filepath"
)

// Default values.
const (
	DefaultFilePrefix        = "prodId_export_"
	DefaultExtension         = "txt"
	DefaultContainer         = "repository"
	DefaultObjectName        = "prodid_d.txt"
	DefaultArchiveObjectName = "prodid_d.txt.gz"
	DefaultSourceType        = SourceSQL
	DefaultBatchSize         = 500
	DefaultReferenceBackend  = ReferenceMongo
	DefaultStagingBackend    = StagingGridFS
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultHistoryFile       = "history.db"
)

// ApplyDefaults fills every unset field with its default value.
func ApplyDefaults(cfg *Config) {
	e := &cfg.Export
	if e.FilePrefix == "" {
		e.FilePrefix = DefaultFilePrefix
	}
	if e.Extension == "" {
		e.Extension = DefaultExtension
	}
	if e.Container == "" {
		e.Container = DefaultContainer
	}
	if e.ObjectName == "" {
		e.ObjectName = DefaultObjectName
	}
	if e.ArchiveObjectName == "" {
		e.ArchiveObjectName = DefaultArchiveObjectName
	}

	if cfg.Source.Type == "" {
		cfg.Source.Type = DefaultSourceType
	}
	if cfg.Source.BatchSize <= 0 {
		cfg.Source.BatchSize = DefaultBatchSize
	}

	if cfg.Reference.Backend == "" {
		cfg.Reference.Backend = DefaultReferenceBackend
	}
	if cfg.Staging.Backend == "" {
		cfg.Staging.Backend = DefaultStagingBackend
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.History.Path == "" {
		cfg.History.Path = defaultHistoryPath()
	}
}

// defaultHistoryPath is ~/.prodexport/history.db, or a relative path when the
// home directory is unknown.
func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".prodexport", DefaultHistoryFile)
	}
	return filepath.Join(home, ".prodexport", DefaultHistoryFile)
}
