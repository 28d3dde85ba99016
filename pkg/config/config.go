package config

import "time"

// Config is the root configuration structure for Throttlegate.
type Config struct {
	// Server contains the HTTP listener and middleware configuration for the
	// rate limit decision endpoint.
	Server ServerConfig `yaml:"server"`

	// Catalog selects and configures the policy catalog backend.
	Catalog CatalogConfig `yaml:"catalog"`

	// Store selects and configures the sliding-window counting store backend.
	Store StoreConfig `yaml:"store"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 5s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 5s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 60s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for in-flight requests
	// to finish during graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration for the decision endpoint.
type CORSConfig struct {
	// Enabled controls whether CORS headers are added to responses.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// CatalogMode selects which catalog.Adapter implementation is constructed.
type CatalogMode string

const (
	CatalogModePostgres CatalogMode = "postgres"
	CatalogModeFile     CatalogMode = "file"
)

// CatalogConfig selects and configures the policy catalog backend.
type CatalogConfig struct {
	// Mode selects the catalog backend: "postgres" or "file".
	// Default: "postgres"
	Mode CatalogMode `yaml:"mode"`

	// PostgresDSN is the connection string used when Mode is "postgres".
	PostgresDSN string `yaml:"postgres_dsn"`

	// FilePath is the YAML catalog file path used when Mode is "file".
	// Default: "./catalog.yaml"
	FilePath string `yaml:"file_path"`

	// Watch is parsed and can be overridden from the environment, but nothing
	// reads it: the file catalog always watches FilePath for changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// OperationTimeout bounds every individual catalog lookup.
	// Default: 250ms
	OperationTimeout time.Duration `yaml:"operation_timeout"`
}

// StoreBackend selects which store.Backend implementation is constructed.
type StoreBackend string

const (
	StoreBackendRedis  StoreBackend = "redis"
	StoreBackendMemory StoreBackend = "memory"
)

// StoreConfig selects and configures the sliding-window counting store.
type StoreConfig struct {
	// Backend selects the counting store: "redis" or "memory".
	// Default: "redis"
	Backend StoreBackend `yaml:"backend"`

	// RedisAddr is the address of the Redis server used when Backend is "redis".
	// Default: "localhost:6379"
	RedisAddr string `yaml:"redis_addr"`

	// RedisDB selects the Redis logical database index.
	// Default: 0
	RedisDB int `yaml:"redis_db"`

	// OperationTimeout bounds every individual store round trip.
	// Default: 250ms
	OperationTimeout time.Duration `yaml:"operation_timeout"`

	// MaxRetries bounds the counter's optimistic-concurrency retry loop
	// before a key is reported as contended.
	// Default: 5
	MaxRetries int `yaml:"max_retries"`
}

// TelemetryConfig contains logging and metrics configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log encoding: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics exposition configuration.
type MetricsConfig struct {
	// Enabled controls whether the /metrics endpoint is registered.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path the metrics handler is mounted on.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
