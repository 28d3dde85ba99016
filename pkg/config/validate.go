package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g. "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateCatalog(&cfg.Catalog)...)
	errs = append(errs, validateStore(&cfg.Store)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(s *ServerConfig) []FieldError {
	var errs []FieldError
	if s.ListenAddress == "" {
		errs = append(errs, FieldError{"server.listen_address", "field is required"})
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, FieldError{"server.read_timeout", "must be positive"})
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, FieldError{"server.write_timeout", "must be positive"})
	}
	if s.IdleTimeout <= 0 {
		errs = append(errs, FieldError{"server.idle_timeout", "must be positive"})
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, FieldError{"server.shutdown_timeout", "must be positive"})
	}
	return errs
}

func validateCatalog(c *CatalogConfig) []FieldError {
	var errs []FieldError
	switch c.Mode {
	case CatalogModePostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, FieldError{"catalog.postgres_dsn", "field is required when mode is \"postgres\""})
		}
	case CatalogModeFile:
		if c.FilePath == "" {
			errs = append(errs, FieldError{"catalog.file_path", "field is required when mode is \"file\""})
		}
	default:
		errs = append(errs, FieldError{"catalog.mode", fmt.Sprintf("must be %q or %q, got %q", CatalogModePostgres, CatalogModeFile, c.Mode)})
	}
	if c.OperationTimeout <= 0 {
		errs = append(errs, FieldError{"catalog.operation_timeout", "must be positive"})
	}
	return errs
}

func validateStore(s *StoreConfig) []FieldError {
	var errs []FieldError
	switch s.Backend {
	case StoreBackendRedis:
		if s.RedisAddr == "" {
			errs = append(errs, FieldError{"store.redis_addr", "field is required when backend is \"redis\""})
		}
		if s.RedisDB < 0 {
			errs = append(errs, FieldError{"store.redis_db", "must not be negative"})
		}
	case StoreBackendMemory:
	default:
		errs = append(errs, FieldError{"store.backend", fmt.Sprintf("must be %q or %q, got %q", StoreBackendRedis, StoreBackendMemory, s.Backend)})
	}
	if s.OperationTimeout <= 0 {
		errs = append(errs, FieldError{"store.operation_timeout", "must be positive"})
	}
	if s.MaxRetries <= 0 {
		errs = append(errs, FieldError{"store.max_retries", "must be positive"})
	}
	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError
	switch t.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{"telemetry.logging.level", fmt.Sprintf("must be one of debug, info, warn, error, got %q", t.Logging.Level)})
	}
	switch t.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{"telemetry.logging.format", fmt.Sprintf("must be \"json\" or \"text\", got %q", t.Logging.Format)})
	}
	if t.Metrics.Enabled && t.Metrics.Path == "" {
		errs = append(errs, FieldError{"telemetry.metrics.path", "field is required when metrics are enabled"})
	}
	return errs
}
