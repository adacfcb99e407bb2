// Package config loads service settings from a YAML file, .env files and
// PULSE_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every setting of the server and the headless simulator.
type Config struct {
	Market struct {
		UniverseSize int           `yaml:"universe_size"`
		TickInterval time.Duration `yaml:"tick_interval"`
		Seed         int64         `yaml:"seed"` // 0 = time-based
	} `yaml:"market"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Storage struct {
		PostgresDSN   string `yaml:"postgres_dsn"`
		ClickhouseDSN string `yaml:"clickhouse_dsn"`
		UseMemory     bool   `yaml:"use_memory"`
		SampleLimit   int    `yaml:"sample_limit"` // per token, memory archive only
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"` // info | debug
		File  string `yaml:"file"`  // empty = stdout only
	} `yaml:"logging"`
}

// Default returns the built-in settings.
func Default() *Config {
	var cfg Config
	cfg.Market.UniverseSize = 30
	cfg.Market.TickInterval = 800 * time.Millisecond
	cfg.HTTP.Addr = ":8080"
	cfg.Storage.UseMemory = true
	cfg.Storage.SampleLimit = 1000
	cfg.Logging.Level = "info"
	return &cfg
}

// Load reads the YAML file at path over the defaults, then applies .env
// files and environment overrides. An empty path skips the file.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}
	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Market.UniverseSize <= 0 {
		return fmt.Errorf("%w: market.universe_size must be positive, got %d", ErrInvalidConfig, c.Market.UniverseSize)
	}
	if c.Market.TickInterval <= 0 {
		return fmt.Errorf("%w: market.tick_interval must be positive, got %v", ErrInvalidConfig, c.Market.TickInterval)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("%w: http.addr is required", ErrInvalidConfig)
	}
	if !c.Storage.UseMemory && (c.Storage.PostgresDSN == "" || c.Storage.ClickhouseDSN == "") {
		return fmt.Errorf("%w: storage.postgres_dsn and storage.clickhouse_dsn are required unless storage.use_memory is set", ErrInvalidConfig)
	}
	if c.Storage.SampleLimit <= 0 {
		return fmt.Errorf("%w: storage.sample_limit must be positive, got %d", ErrInvalidConfig, c.Storage.SampleLimit)
	}
	switch c.Logging.Level {
	case "info", "debug":
	default:
		return fmt.Errorf("%w: unknown logging.level %q", ErrInvalidConfig, c.Logging.Level)
	}
	return nil
}

// Debug reports whether per-tick logging is enabled.
func (c *Config) Debug() bool {
	return c.Logging.Level == "debug"
}

// loadEnvFiles loads .env style files without overriding variables that are
// already set. Missing files are skipped.
func loadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

// overrideWithEnv applies PULSE_* variables over the file settings.
func overrideWithEnv(cfg *Config) error {
	if v := os.Getenv("PULSE_UNIVERSE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PULSE_UNIVERSE_SIZE: %v", ErrInvalidConfig, err)
		}
		cfg.Market.UniverseSize = n
	}
	if v := os.Getenv("PULSE_TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: PULSE_TICK_INTERVAL: %v", ErrInvalidConfig, err)
		}
		cfg.Market.TickInterval = d
	}
	if v := os.Getenv("PULSE_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: PULSE_SEED: %v", ErrInvalidConfig, err)
		}
		cfg.Market.Seed = n
	}
	if v := os.Getenv("PULSE_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("PULSE_POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("PULSE_CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickhouseDSN = v
	}
	if v := os.Getenv("PULSE_USE_MEMORY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: PULSE_USE_MEMORY: %v", ErrInvalidConfig, err)
		}
		cfg.Storage.UseMemory = b
	}
	if v := os.Getenv("PULSE_SAMPLE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: PULSE_SAMPLE_LIMIT: %v", ErrInvalidConfig, err)
		}
		cfg.Storage.SampleLimit = n
	}
	if v := os.Getenv("PULSE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PULSE_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	return nil
}
