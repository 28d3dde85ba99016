// Package config provides configuration management for Throttlegate.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention THROTTLEGATE_SECTION_FIELD.
// For example:
//
//   - THROTTLEGATE_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - THROTTLEGATE_CATALOG_POSTGRES_DSN overrides catalog.postgres_dsn
//   - THROTTLEGATE_STORE_REDIS_ADDR overrides store.redis_addr
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// LoadConfigWithEnvOverrides also validates the file configuration before
// applying environment overrides, so an invalid file fails even when the
// environment would correct it.
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.ListenAddress)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation includes:
//
//   - Required field checks (e.g., catalog.postgres_dsn when mode is "postgres")
//   - Range validation (e.g., timeouts must be positive)
//   - Enum validation (e.g., store.backend must be "redis" or "memory")
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - catalog.postgres_dsn: field is required when mode is "postgres"
//	  - store.max_retries: must be positive
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//
//	catalog:
//	  mode: "postgres"
//	  postgres_dsn: "${RL_PG_DSN}"
//
//	store:
//	  backend: "redis"
//	  redis_addr: "localhost:6379"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// File values are used literally: placeholders such as "${RL_PG_DSN}" are not
// expanded from the environment. Set THROTTLEGATE_CATALOG_POSTGRES_DSN to
// supply the DSN from the environment.
//
// # Thread Safety
//
// All configuration access is thread-safe. The singleton pattern uses read-write
// locks to allow concurrent reads while protecting against concurrent writes during
// reload operations.
package config
