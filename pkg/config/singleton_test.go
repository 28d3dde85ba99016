package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetConfig_ReturnsNilBeforeSet(t *testing.T) {
	configMutex.Lock()
	globalConfig = nil
	configMutex.Unlock()

	assert.Nil(t, GetConfig())
}

func TestSetConfig_AndGetConfig_RoundTrip(t *testing.T) {
	cfg := &Config{Server: ServerConfig{ListenAddress: "127.0.0.1:9999"}}
	SetConfig(cfg)
	t.Cleanup(func() { SetConfig(nil) })

	got := GetConfig()
	assert.Same(t, cfg, got)
}

func TestMustGetConfig_PanicsWhenUnset(t *testing.T) {
	configMutex.Lock()
	globalConfig = nil
	configMutex.Unlock()

	assert.Panics(t, func() { MustGetConfig() })
}

func TestMustGetConfig_ReturnsConfigWhenSet(t *testing.T) {
	cfg := &Config{Server: ServerConfig{ListenAddress: "127.0.0.1:9999"}}
	SetConfig(cfg)
	t.Cleanup(func() { SetConfig(nil) })

	assert.Equal(t, cfg, MustGetConfig())
}
