package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Market.UniverseSize)
	assert.Equal(t, 800*time.Millisecond, cfg.Market.TickInterval)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.True(t, cfg.Storage.UseMemory)
	assert.Equal(t, 1000, cfg.Storage.SampleLimit)
	assert.False(t, cfg.Debug())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "pulse.yaml", `
market:
  universe_size: 12
  tick_interval: 250ms
  seed: 7
http:
  addr: "127.0.0.1:9000"
storage:
  use_memory: false
  postgres_dsn: postgres://localhost/pulse
  clickhouse_dsn: clickhouse://localhost/pulse
logging:
  level: debug
  file: /tmp/pulse.log
`)

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Market.UniverseSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Market.TickInterval)
	assert.Equal(t, int64(7), cfg.Market.Seed)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.False(t, cfg.Storage.UseMemory)
	assert.Equal(t, "postgres://localhost/pulse", cfg.Storage.PostgresDSN)
	assert.Equal(t, "clickhouse://localhost/pulse", cfg.Storage.ClickhouseDSN)
	assert.True(t, cfg.Debug())
	assert.Equal(t, "/tmp/pulse.log", cfg.Logging.File)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "pulse.yaml", "market:\n  universe_size: 12\n")
	t.Setenv("PULSE_UNIVERSE_SIZE", "45")
	t.Setenv("PULSE_TICK_INTERVAL", "2s")
	t.Setenv("PULSE_HTTP_ADDR", ":7070")

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.Market.UniverseSize)
	assert.Equal(t, 2*time.Second, cfg.Market.TickInterval)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
}

func TestLoad_DotEnv(t *testing.T) {
	// Registered so the variable set by the .env file is cleared afterwards.
	t.Setenv("PULSE_SEED", "")
	os.Unsetenv("PULSE_SEED")

	envFile := writeFile(t, "test.env", "PULSE_SEED=99\n")

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Market.Seed)
}

func TestLoad_Errors(t *testing.T) {
	noEnv := filepath.Join(t.TempDir(), "missing.env")

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), noEnv)
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.yaml", "market: [\n"), noEnv)
		assert.Error(t, err)
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("PULSE_UNIVERSE_SIZE", "lots")
		_, err := Load("", noEnv)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero universe", func(c *Config) { c.Market.UniverseSize = 0 }, false},
		{"negative interval", func(c *Config) { c.Market.TickInterval = -time.Second }, false},
		{"empty addr", func(c *Config) { c.HTTP.Addr = "" }, false},
		{"db without dsn", func(c *Config) { c.Storage.UseMemory = false }, false},
		{"db with dsn", func(c *Config) {
			c.Storage.UseMemory = false
			c.Storage.PostgresDSN = "postgres://x"
			c.Storage.ClickhouseDSN = "clickhouse://x"
		}, true},
		{"unknown level", func(c *Config) { c.Logging.Level = "trace" }, false},
		{"zero sample limit", func(c *Config) { c.Storage.SampleLimit = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestLoad_SampleLimitOverride(t *testing.T) {
	t.Setenv("PULSE_SAMPLE_LIMIT", "250")

	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Storage.SampleLimit)

	t.Setenv("PULSE_SAMPLE_LIMIT", "lots")
	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
