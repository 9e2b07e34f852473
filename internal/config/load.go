package config

import (
	"fmt"
	"os"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path, applies defaults and environment
// overrides, and validates the result. An empty path skips the file.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)
	applyEnvOverrides(&cfg, os.LookupEnv)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides applies PRODEXPORT_SECTION_FIELD variables.
// Unparseable numbers and booleans are ignored.
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	// Export overrides
	str("PRODEXPORT_EXPORT_BASE_DIR", &cfg.Export.BaseDir)
	str("PRODEXPORT_EXPORT_FILE_PREFIX", &cfg.Export.FilePrefix)
	str("PRODEXPORT_EXPORT_EXTENSION", &cfg.Export.Extension)
	str("PRODEXPORT_EXPORT_CONTAINER", &cfg.Export.Container)
	str("PRODEXPORT_EXPORT_OBJECT_NAME", &cfg.Export.ObjectName)
	str("PRODEXPORT_EXPORT_ARCHIVE_OBJECT_NAME", &cfg.Export.ArchiveObjectName)
	if v, ok := lookup("PRODEXPORT_EXPORT_OFFSET"); ok {
		if n, err := cast.ToInt64E(v); err == nil {
			cfg.Export.Offset = n
		}
	}

	// Source overrides
	str("PRODEXPORT_SOURCE_TYPE", &cfg.Source.Type)
	str("PRODEXPORT_SOURCE_TABLE", &cfg.Source.Table)
	str("PRODEXPORT_SOURCE_COLLECTION", &cfg.Source.Collection)
	str("PRODEXPORT_SOURCE_FILE_PATH", &cfg.Source.FilePath)
	if v, ok := lookup("PRODEXPORT_SOURCE_BATCH_SIZE"); ok {
		if n, err := cast.ToIntE(v); err == nil && n > 0 {
			cfg.Source.BatchSize = n
		}
	}

	// Reference and staging overrides
	str("PRODEXPORT_REFERENCE_BACKEND", &cfg.Reference.Backend)
	str("PRODEXPORT_STAGING_BACKEND", &cfg.Staging.Backend)
	str("PRODEXPORT_STAGING_DIR", &cfg.Staging.Dir)

	// Ambient overrides
	str("PRODEXPORT_LOGGING_LEVEL", &cfg.Logging.Level)
	str("PRODEXPORT_LOGGING_FORMAT", &cfg.Logging.Format)
	str("PRODEXPORT_METRICS_TEXTFILE_PATH", &cfg.Metrics.TextfilePath)
	str("PRODEXPORT_HISTORY_PATH", &cfg.History.Path)
	if v, ok := lookup("PRODEXPORT_HISTORY_DISABLED"); ok {
		if b, err := cast.ToBoolE(v); err == nil {
			cfg.History.Disabled = b
		}
	}
}
