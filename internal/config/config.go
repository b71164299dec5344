// Package config loads permitdesk configuration from .permitdesk/config.yaml
// with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvConfig   = "PERMITDESK_CONFIG"
	EnvDB       = "PERMITDESK_DB"
	EnvRedisURL = "PERMITDESK_REDIS_URL"
	EnvLogLevel = "PERMITDESK_LOG_LEVEL"
	EnvActor    = "PERMITDESK_ACTOR"
)

// DirName is the per-workspace configuration directory.
const DirName = ".permitdesk"

// CurrentVersion is written by SaveConfig.
const CurrentVersion = "1"

// Duration is a time.Duration that reads and writes as "5s" in YAML.
type Duration struct {
	time.Duration
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, node.Value, err)
	}
	d.Duration = parsed
	return nil
}

// Config represents the permitdesk configuration.
type Config struct {
	Version  string         `yaml:"version"`
	Actor    string         `yaml:"actor,omitempty"` // default actor stamped into audit fields
	Database DatabaseConfig `yaml:"database"`
	Tickets  TicketsConfig  `yaml:"tickets"`
	Approval ApprovalConfig `yaml:"approval"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path        string   `yaml:"path"`
	TxTimeout   Duration `yaml:"tx_timeout"`
	BusyTimeout Duration `yaml:"busy_timeout"`
}

// TicketsConfig bounds the allocation retry loop.
type TicketsConfig struct {
	MaxRetries   int      `yaml:"max_retries"`
	RetryBackoff Duration `yaml:"retry_backoff"`
}

// ApprovalConfig holds optional state machine policies.
type ApprovalConfig struct {
	RequireCompletedChecklist bool `yaml:"require_completed_checklist"`
}

// RedisConfig configures the cache invalidation publisher. Empty URL disables it.
type RedisConfig struct {
	URL         string   `yaml:"url,omitempty"`
	Channel     string   `yaml:"channel"`
	PoolSize    int      `yaml:"pool_size"`
	DialTimeout Duration `yaml:"dial_timeout"`
}

// LogConfig configures slog.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// MetricsConfig configures prometheus export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default(dir string) *Config {
	return &Config{
		Version: CurrentVersion,
		Database: DatabaseConfig{
			Path:        filepath.Join(dir, DirName, "permitdesk.db"),
			TxTimeout:   Duration{5 * time.Second},
			BusyTimeout: Duration{5 * time.Second},
		},
		Tickets: TicketsConfig{
			MaxRetries:   5,
			RetryBackoff: Duration{20 * time.Millisecond},
		},
		Redis: RedisConfig{
			Channel:     "permitdesk:invalidate",
			PoolSize:    4,
			DialTimeout: Duration{2 * time.Second},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Path returns the config file location for dir, honouring PERMITDESK_CONFIG.
func Path(dir string) string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(dir, DirName, "config.yaml")
}

// LoadConfig reads the config for dir. A missing file yields defaults.
// Environment overrides are applied last.
func LoadConfig(dir string) (*Config, error) {
	cfg := Default(dir)

	data, err := os.ReadFile(Path(dir))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes config.yaml under dir.
func SaveConfig(dir string, cfg *Config) error {
	confDir := filepath.Join(dir, DirName)
	if err := os.MkdirAll(confDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", DirName, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(confDir, "config.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Database.Path == "" {
		problems = append(problems, "database.path is required")
	}
	if c.Tickets.MaxRetries < 1 {
		problems = append(problems, "tickets.max_retries must be at least 1")
	}
	if c.Database.TxTimeout.Duration <= 0 {
		problems = append(problems, "database.tx_timeout must be positive")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDB); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Redis.URL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvActor); v != "" {
		c.Actor = v
	}
}
