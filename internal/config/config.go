// Package config loads roster settings from config.yaml, the environment
// (ROSTER_*, optionally seeded from a .env file) and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	rlog "github.com/mmcdole/roster/internal/log"
)

const (
	appName    = "roster"
	envPrefix  = "ROSTER"
	configName = "config"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging rlog.Config   `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// ServerConfig holds list service configuration
type ServerConfig struct {
	SiteURL    string        `mapstructure:"site_url"`   // e.g. https://contoso.sharepoint.com/sites/hr
	Token      string        `mapstructure:"token"`      // Bearer token
	Collection string        `mapstructure:"collection"` // List title
	Timeout    time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds read cache configuration
type CacheConfig struct {
	Store             string        `mapstructure:"store"` // "session", "local" or "none"
	Dir               string        `mapstructure:"dir"`
	TTL               time.Duration `mapstructure:"ttl"`
	InvalidateOnWrite bool          `mapstructure:"invalidate_on_write"`
}

// MetricsConfig holds the prometheus endpoint configuration
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // Empty disables the endpoint
}

// TracingConfig holds OTLP exporter configuration
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http/protobuf"
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Collection: "EmployeeDetails",
			Timeout:    30 * time.Second,
		},
		Cache: CacheConfig{
			Store: "session",
			Dir:   defaultCachePath(),
		},
		Logging: rlog.Config{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		Tracing: TracingConfig{
			Protocol:    "grpc",
			SampleRatio: 1.0,
		},
	}
}

// IsConfigured returns true if the site URL and token are set
func (c *Config) IsConfigured() bool {
	return c.Server.SiteURL != "" && c.Server.Token != ""
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName, appName+".log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, appName+".log")
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName, "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, "cache")
	}
}

// flagKeys maps command-line flags to config keys
var flagKeys = map[string]string{
	"site-url":     "server.site_url",
	"collection":   "server.collection",
	"timeout":      "server.timeout",
	"cache-store":  "cache.store",
	"cache-ttl":    "cache.ttl",
	"log-level":    "logging.level",
	"log-file":     "logging.file",
	"metrics-addr": "metrics.addr",
}

// RegisterFlags adds the config override flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("site-url", "", "list service site URL")
	fs.String("collection", "", "list title")
	fs.Duration("timeout", 0, "HTTP request timeout")
	fs.String("cache-store", "", "read cache store: session, local or none")
	fs.Duration("cache-ttl", 0, "read cache entry lifetime (0 = whole session)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-file", "", "log file path")
	fs.String("metrics-addr", "", "serve prometheus metrics on this address")
}

// Manager reads and writes one config file
type Manager struct {
	v   *viper.Viper
	dir string
}

// NewManager creates a manager for the config directory dir.
// An empty dir means the OS default.
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = DefaultConfigPath()
	}
	return &Manager{v: viper.New(), dir: dir}
}

// Dir returns the config directory
func (m *Manager) Dir() string {
	return m.dir
}

// File returns the config file path
func (m *Manager) File() string {
	return filepath.Join(m.dir, configName+".yaml")
}

// Load loads configuration from file, environment and flags (in increasing
// precedence). flags may be nil.
func (m *Manager) Load(flags *pflag.FlagSet) (*Config, error) {
	// .env seeds the environment; existing variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := m.v
	setDefaults(v, DefaultConfig())

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(m.dir)
	v.AddConfigPath(".")

	// Environment variable overrides: ROSTER_SERVER_SITE_URL etc.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.site_url", cfg.Server.SiteURL)
	v.SetDefault("server.token", cfg.Server.Token)
	v.SetDefault("server.collection", cfg.Server.Collection)
	v.SetDefault("server.timeout", cfg.Server.Timeout)
	v.SetDefault("cache.store", cfg.Cache.Store)
	v.SetDefault("cache.dir", cfg.Cache.Dir)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.invalidate_on_write", cfg.Cache.InvalidateOnWrite)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("metrics.addr", cfg.Metrics.Addr)
	v.SetDefault("tracing.enabled", cfg.Tracing.Enabled)
	v.SetDefault("tracing.endpoint", cfg.Tracing.Endpoint)
	v.SetDefault("tracing.protocol", cfg.Tracing.Protocol)
	v.SetDefault("tracing.sample_ratio", cfg.Tracing.SampleRatio)
}

// SaveConfig saves the configuration to the config file
func (m *Manager) SaveConfig(cfg *Config) error {
	// Set fields individually to ensure correct key names (snake_case)
	m.v.Set("server.site_url", cfg.Server.SiteURL)
	m.v.Set("server.token", cfg.Server.Token)
	m.v.Set("server.collection", cfg.Server.Collection)
	m.v.Set("server.timeout", cfg.Server.Timeout.String())

	m.v.Set("cache.store", cfg.Cache.Store)
	m.v.Set("cache.dir", cfg.Cache.Dir)
	m.v.Set("cache.ttl", cfg.Cache.TTL.String())
	m.v.Set("cache.invalidate_on_write", cfg.Cache.InvalidateOnWrite)

	m.v.Set("logging.file", cfg.Logging.File)
	m.v.Set("logging.level", cfg.Logging.Level)

	m.v.Set("metrics.addr", cfg.Metrics.Addr)

	m.v.Set("tracing.enabled", cfg.Tracing.Enabled)
	m.v.Set("tracing.endpoint", cfg.Tracing.Endpoint)
	m.v.Set("tracing.protocol", cfg.Tracing.Protocol)
	m.v.Set("tracing.sample_ratio", cfg.Tracing.SampleRatio)

	return m.write()
}

// ClearServerConfig removes the site URL and token while preserving other
// settings (collection, cache, logging)
func (m *Manager) ClearServerConfig() error {
	m.v.Set("server.site_url", "")
	m.v.Set("server.token", "")
	return m.write()
}

func (m *Manager) write() error {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := m.v.WriteConfigAs(m.File()); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ClearCache removes all persisted cache data under dir
func ClearCache(dir string) error {
	if dir == "" {
		dir = defaultCachePath()
	}
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
