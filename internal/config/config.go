package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Limits enforced regardless of configuration.
const (
	MaxQueueLimit = 500
	MaxBatchCap   = 500
)

// Environment overrides.
const (
	EnvDBPath   = "LOADMATCH_DB_PATH"
	EnvLogLevel = "LOADMATCH_LOG_LEVEL"
	EnvWorkers  = "LOADMATCH_WORKERS"
)

// Config is the loadmatch configuration file.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Processing ProcessingConfig `yaml:"processing"`
	Queue      QueueConfig      `yaml:"queue"`
	Logging    LoggingConfig    `yaml:"logging"`
	Inbox      InboxConfig      `yaml:"inbox"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path          string `yaml:"path"`            // empty means ~/.loadmatch/loadmatch.db
	BusyTimeoutMs int    `yaml:"busy_timeout_ms"` // wait for the write lock before failing
}

// ProcessingConfig tunes batch replays.
type ProcessingConfig struct {
	BatchCap int `yaml:"batch_cap"`
	Workers  int `yaml:"workers"` // groups replayed concurrently
}

// QueueConfig bounds queue listings.
type QueueConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Development bool   `yaml:"development"` // console encoder instead of JSON
}

// InboxConfig is where vendor drops arrive.
type InboxConfig struct {
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"` // filepath.Match pattern for watched files
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			BusyTimeoutMs: 5000,
		},
		Processing: ProcessingConfig{
			BatchCap: MaxBatchCap,
			Workers:  1,
		},
		Queue: QueueConfig{
			DefaultLimit: 200,
			MaxLimit:     MaxQueueLimit,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Inbox: InboxConfig{
			Pattern: "*.json",
		},
	}
}

// DefaultPath returns ~/.loadmatch/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".loadmatch", "config.yaml"), nil
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error. Environment overrides are applied last, then limits are clamped.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.clamp()
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if path := os.Getenv(EnvDBPath); path != "" {
		c.Database.Path = path
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if raw := os.Getenv(EnvWorkers); raw != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvWorkers, raw, err)
		}
		c.Processing.Workers = n
	}
	return nil
}

// clamp pulls every limit into its allowed range.
func (c *Config) clamp() {
	c.Queue.MaxLimit = clampInt(c.Queue.MaxLimit, 1, MaxQueueLimit, MaxQueueLimit)
	c.Queue.DefaultLimit = clampInt(c.Queue.DefaultLimit, 1, c.Queue.MaxLimit, min(200, c.Queue.MaxLimit))
	c.Processing.BatchCap = clampInt(c.Processing.BatchCap, 1, MaxBatchCap, MaxBatchCap)
	if c.Processing.Workers < 1 {
		c.Processing.Workers = 1
	}
	if c.Database.BusyTimeoutMs < 0 {
		c.Database.BusyTimeoutMs = 0
	}
	if c.Inbox.Pattern == "" {
		c.Inbox.Pattern = "*.json"
	}
}

// clampInt returns fallback for unset values and caps the rest to [lo, hi].
func clampInt(v, lo, hi, fallback int) int {
	switch {
	case v <= 0:
		return fallback
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
