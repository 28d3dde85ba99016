package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path. It
// applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Seed bool fields whose zero value (false) is not the default, so an
	// absent YAML key keeps the default instead of being overwritten with
	// false by Unmarshal.
	cfg := Config{
		Server:    ServerConfig{CORS: CORSConfig{Enabled: DefaultCORSEnabled}},
		Telemetry: TelemetryConfig{Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled}},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention THROTTLEGATE_SECTION_FIELD (e.g. THROTTLEGATE_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Validate the file configuration (via LoadConfig)
//  4. Apply environment variable overrides
//  5. Validate final configuration
//
// A file that is invalid on its own is rejected even if environment
// variables would have fixed it.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format THROTTLEGATE_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("THROTTLEGATE_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("THROTTLEGATE_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("THROTTLEGATE_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("THROTTLEGATE_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("THROTTLEGATE_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("THROTTLEGATE_SERVER_CORS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Server.CORS.Enabled = b
		}
	}

	if val := os.Getenv("THROTTLEGATE_CATALOG_MODE"); val != "" {
		cfg.Catalog.Mode = CatalogMode(val)
	}
	if val := os.Getenv("THROTTLEGATE_CATALOG_POSTGRES_DSN"); val != "" {
		cfg.Catalog.PostgresDSN = val
	}
	if val := os.Getenv("THROTTLEGATE_CATALOG_FILE_PATH"); val != "" {
		cfg.Catalog.FilePath = val
	}
	if val := os.Getenv("THROTTLEGATE_CATALOG_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Catalog.Watch = b
		}
	}
	if val := os.Getenv("THROTTLEGATE_CATALOG_OPERATION_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Catalog.OperationTimeout = d
		}
	}

	if val := os.Getenv("THROTTLEGATE_STORE_BACKEND"); val != "" {
		cfg.Store.Backend = StoreBackend(val)
	}
	if val := os.Getenv("THROTTLEGATE_STORE_REDIS_ADDR"); val != "" {
		cfg.Store.RedisAddr = val
	}
	if val := os.Getenv("THROTTLEGATE_STORE_REDIS_DB"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Store.RedisDB = i
		}
	}
	if val := os.Getenv("THROTTLEGATE_STORE_OPERATION_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Store.OperationTimeout = d
		}
	}
	if val := os.Getenv("THROTTLEGATE_STORE_MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Store.MaxRetries = i
		}
	}

	if val := os.Getenv("THROTTLEGATE_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("THROTTLEGATE_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("THROTTLEGATE_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("THROTTLEGATE_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
