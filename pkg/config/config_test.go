package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfig_UnmarshalsFullDocument(t *testing.T) {
	doc := `
server:
  listen_address: "0.0.0.0:8080"
  read_timeout: 5s
  cors:
    enabled: true
    allowed_origins: ["https://example.com"]

catalog:
  mode: "postgres"
  postgres_dsn: "postgres://localhost/rl"
  operation_timeout: 250ms

store:
  backend: "redis"
  redis_addr: "localhost:6379"
  redis_db: 2
  max_retries: 5

telemetry:
  logging:
    level: "debug"
    format: "text"
  metrics:
    enabled: true
    path: "/metrics"
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.ListenAddress)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORS.AllowedOrigins)
	assert.Equal(t, CatalogModePostgres, cfg.Catalog.Mode)
	assert.Equal(t, StoreBackendRedis, cfg.Store.Backend)
	assert.Equal(t, 2, cfg.Store.RedisDB)
	assert.Equal(t, "debug", cfg.Telemetry.Logging.Level)
}
