package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at an empty dir and blanks every env var the loader reads.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{
		"STOREFRONT_API_URL",
		"NEXT_PUBLIC_API_URL",
		"STOREFRONT_API_TIMEOUT",
		"STOREFRONT_STORAGE_DRIVER",
		"STOREFRONT_UI_LOCALE",
		"STOREFRONT_APP_ENV",
		"STOREFRONT_TELEMETRY_ENABLED",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		isolate(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "http://localhost:5000/api", cfg.API.URL)
		assert.Equal(t, 30*time.Second, cfg.API.Timeout)
		assert.Equal(t, 0, cfg.API.MaxRetries)
		assert.Equal(t, "file", cfg.Storage.Driver)
		assert.NotEmpty(t, cfg.Storage.Path)
		assert.Equal(t, "es", cfg.UI.Locale)
		assert.Empty(t, cfg.Log.Level, "left to the logger profile")
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables with STOREFRONT prefix", func(t *testing.T) {
		isolate(t)
		t.Setenv("STOREFRONT_API_URL", "https://shop.example.com/api")
		t.Setenv("STOREFRONT_API_TIMEOUT", "5s")
		t.Setenv("STOREFRONT_STORAGE_DRIVER", "memory")
		t.Setenv("STOREFRONT_UI_LOCALE", "en")
		t.Setenv("STOREFRONT_APP_ENV", "production")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://shop.example.com/api", cfg.API.URL)
		assert.Equal(t, 5*time.Second, cfg.API.Timeout)
		assert.Equal(t, "memory", cfg.Storage.Driver)
		assert.Equal(t, "en", cfg.UI.Locale)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("honours legacy NEXT_PUBLIC_API_URL", func(t *testing.T) {
		isolate(t)
		t.Setenv("NEXT_PUBLIC_API_URL", "http://api.internal:5000/api")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "http://api.internal:5000/api", cfg.API.URL)
	})
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "storefront.toml")
	content := `
[api]
url = "http://localhost:7000/api"
rate_limit = 5.0

[storage]
driver = "sqlite"
path = "/tmp/storefront-test.db"

[storage.redis]
port = 6380
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:7000/api", cfg.API.URL)
	assert.Equal(t, 5.0, cfg.API.RateLimit)
	assert.Equal(t, 1, cfg.API.RateBurst, "burst defaults to 1 when a rate is set")
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/storefront-test.db", cfg.Storage.Path)
	assert.Equal(t, 6380, cfg.Storage.Redis.Port)
	assert.Equal(t, "localhost", cfg.Storage.Redis.Host)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-http scheme", func(c *Config) { c.API.URL = "ftp://example.com" }},
		{"missing host", func(c *Config) { c.API.URL = "http://" }},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second }},
		{"negative rate", func(c *Config) { c.API.RateLimit = -1 }},
		{"negative retries", func(c *Config) { c.API.MaxRetries = -1 }},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "etcd" }},
		{"sampling out of range", func(c *Config) { c.Telemetry.SamplingRatio = 2 }},
		{"telemetry without endpoint", func(c *Config) { c.Telemetry.Enabled = true }},
		{"unknown log level", func(c *Config) { c.Log.Level = "chatty" }},
	}

	require.NoError(t, valid().validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.validate(), ErrInvalidConfig)
		})
	}
}
