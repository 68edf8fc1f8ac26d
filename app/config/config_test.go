package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	FileEnv, "ADDR", "DATA_DIR", "IN_MEMORY", "JWT_SECRET", "TOKEN_TTL",
	"DEFAULT_PAGE_SIZE", "MAX_PAGE_SIZE", "STORE_TIMEOUT", "ALLOWED_ORIGINS",
	"LOG_LEVEL", "LOG_FORMAT", "SHUTDOWN_TIMEOUT", "BCRYPT_COST",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Error(t, cfg.Validate(), "secret is required")
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADDR", ":9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("IN_MEMORY", "true")
	t.Setenv("MAX_PAGE_SIZE", "50")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://blog.example ,")
	t.Setenv("STORE_TIMEOUT", "not-a-duration")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.True(t, cfg.InMemory)
	assert.Equal(t, 50, cfg.MaxPageSize)
	assert.Equal(t, []string{"http://localhost:5173", "https://blog.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout, "unparsable durations keep the default")
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_PAGE_SIZE", "ten")
	_, err := Load()
	assert.ErrorContains(t, err, "DEFAULT_PAGE_SIZE")

	clearEnv(t)
	t.Setenv("IN_MEMORY", "maybe")
	_, err = Load()
	assert.ErrorContains(t, err, "IN_MEMORY")
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "inkpost.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":7000"
jwt_secret: from-file
token_ttl: 2h
default_page_size: 5
allowed_origins:
  - http://localhost:5173
log_level: debug
`), 0o600))
	t.Setenv(FileEnv, path)
	t.Setenv("ADDR", ":7001")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7001", cfg.Addr, "environment overrides the file")
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.NoError(t, cfg.Validate())

	t.Run("missing file", func(t *testing.T) {
		t.Setenv(FileEnv, filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := Load()
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("malformed file", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("addr: [unclosed"), 0o600))
		t.Setenv(FileEnv, bad)
		_, err := Load()
		assert.ErrorContains(t, err, "failed to parse config file")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.JWTSecret = "secret"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }, "TOKEN_TTL"},
		{"zero page size", func(c *Config) { c.DefaultPageSize = 0 }, "DEFAULT_PAGE_SIZE"},
		{"max below default", func(c *Config) { c.MaxPageSize = 5 }, "MAX_PAGE_SIZE"},
		{"zero store timeout", func(c *Config) { c.StoreTimeout = 0 }, "STORE_TIMEOUT"},
		{"no data dir", func(c *Config) { c.DataDir = "" }, "DATA_DIR"},
		{"in memory needs no dir", func(c *Config) { c.DataDir = ""; c.InMemory = true }, ""},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"
	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg.LogLevel = "nope"
	_, err = cfg.NewLogger()
	assert.Error(t, err)
}
