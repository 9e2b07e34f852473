package config

import (
	"fmt"
	"strings"

	"prodexport/internal/domain"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the field (e.g., "source.connection").
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks the configuration and returns a ValidationError listing
// every problem, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError
	errs = append(errs, validateExport(&cfg.Export)...)
	errs = append(errs, validateSource(&cfg.Source)...)
	errs = append(errs, validateReference(&cfg.Reference)...)
	errs = append(errs, validateStaging(&cfg.Staging)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateExport(e *ExportConfig) []FieldError {
	var errs []FieldError
	if e.Offset < 0 {
		errs = append(errs, FieldError{"export.offset", "must not be negative"})
	}
	if strings.ContainsAny(e.FilePrefix, `/\`) {
		errs = append(errs, FieldError{"export.file_prefix", "must not contain path separators"})
	}
	if e.ObjectName == e.ArchiveObjectName {
		errs = append(errs, FieldError{"export.archive_object_name", "must differ from export.object_name"})
	}
	return errs
}

func validateSource(s *SourceConfig) []FieldError {
	switch s.Type {
	case SourceSQL:
		if s.Connection == nil || !s.Connection.IsSQL() {
			return []FieldError{{"source.connection", "a mysql, postgres or sqlite connection is required"}}
		}
	case SourceMongo:
		if s.Connection == nil || s.Connection.Driver != domain.DatabaseDriverMongoDB {
			return []FieldError{{"source.connection", "a mongodb connection is required"}}
		}
	case SourceNDJSON:
		if s.FilePath == "" {
			return []FieldError{{"source.file_path", "is required for ndjson sources"}}
		}
	default:
		return []FieldError{{"source.type", fmt.Sprintf("unknown source type %q", s.Type)}}
	}
	return nil
}

func validateReference(r *ReferenceConfig) []FieldError {
	switch r.Backend {
	case ReferenceMongo:
		if r.Connection == nil || r.Connection.Driver != domain.DatabaseDriverMongoDB {
			return []FieldError{{"reference.connection", "a mongodb connection is required"}}
		}
	case ReferenceSQL:
		if r.Connection == nil || !r.Connection.IsSQL() {
			return []FieldError{{"reference.connection", "a mysql, postgres or sqlite connection is required"}}
		}
	default:
		return []FieldError{{"reference.backend", fmt.Sprintf("unknown backend %q", r.Backend)}}
	}
	return nil
}

func validateStaging(s *StagingConfig) []FieldError {
	switch s.Backend {
	case StagingGridFS:
		if s.Connection == nil || s.Connection.Driver != domain.DatabaseDriverMongoDB {
			return []FieldError{{"staging.connection", "a mongodb connection is required"}}
		}
	case StagingDir:
		if s.Dir == "" {
			return []FieldError{{"staging.dir", "is required for the dir backend"}}
		}
	default:
		return []FieldError{{"staging.backend", fmt.Sprintf("unknown backend %q", s.Backend)}}
	}
	return nil
}

func validateLogging(l *LoggingConfig) []FieldError {
	var errs []FieldError
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{"logging.level", fmt.Sprintf("unknown level %q", l.Level)})
	}
	switch strings.ToLower(l.Format) {
	case "text", "json":
	default:
		errs = append(errs, FieldError{"logging.format", fmt.Sprintf("unknown format %q", l.Format)})
	}
	return errs
}
