package config

import "time"

// Default values for configuration fields.
const (
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 5 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultCORSEnabled = true

	DefaultCatalogMode             = CatalogModePostgres
	DefaultCatalogFilePath         = "./catalog.yaml"
	DefaultCatalogWatch            = false
	DefaultCatalogOperationTimeout = 250 * time.Millisecond

	DefaultStoreBackend           = StoreBackendRedis
	DefaultRedisAddr              = "localhost:6379"
	DefaultRedisDB                = 0
	DefaultStoreOperationTimeout  = 250 * time.Millisecond
	DefaultStoreMaxRetries        = 5

	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"

	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"
)

// DefaultAllowedOrigins is the CORS allowed-origins default, kept separate
// since slices cannot be const.
var DefaultAllowedOrigins = []string{"*"}

// ApplyDefaults fills every zero-valued non-bool field of cfg with its
// default. Bool fields (CORS and metrics Enabled) are left as they are, since
// false cannot be told apart from unset; LoadConfig seeds their defaults
// before parsing. It is applied after the YAML file is parsed and before
// environment overrides, so file values always take precedence over defaults
// and env values always take precedence over both.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyCatalogDefaults(&cfg.Catalog)
	applyStoreDefaults(&cfg.Store)
	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyServerDefaults(s *ServerConfig) {
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	if len(s.CORS.AllowedOrigins) == 0 {
		s.CORS.AllowedOrigins = DefaultAllowedOrigins
	}
}

func applyCatalogDefaults(c *CatalogConfig) {
	if c.Mode == "" {
		c.Mode = DefaultCatalogMode
	}
	if c.FilePath == "" {
		c.FilePath = DefaultCatalogFilePath
	}
	if c.OperationTimeout == 0 {
		c.OperationTimeout = DefaultCatalogOperationTimeout
	}
}

func applyStoreDefaults(s *StoreConfig) {
	if s.Backend == "" {
		s.Backend = DefaultStoreBackend
	}
	if s.RedisAddr == "" {
		s.RedisAddr = DefaultRedisAddr
	}
	if s.OperationTimeout == 0 {
		s.OperationTimeout = DefaultStoreOperationTimeout
	}
	if s.MaxRetries == 0 {
		s.MaxRetries = DefaultStoreMaxRetries
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
}
