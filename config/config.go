package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName is used for the config file name, env prefix and XDG directories
const AppName = "gpustats"

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Browser  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	Fetch    FetchConfig    `mapstructure:"fetch" yaml:"fetch"`
	Pacing   PacingConfig   `mapstructure:"pacing" yaml:"pacing"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Schedule ScheduleConfig `mapstructure:"schedule" yaml:"schedule"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Sources  []SourceConfig `mapstructure:"sources" yaml:"sources"`
}

// DatabaseConfig selects the catalog store
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
	Table  string `mapstructure:"table" yaml:"table"`
}

// BrowserConfig configures the headless browser used by browser-backed sources
type BrowserConfig struct {
	Bin       string `mapstructure:"bin" yaml:"bin"`
	Headless  bool   `mapstructure:"headless" yaml:"headless"`
	NoSandbox bool   `mapstructure:"no_sandbox" yaml:"no_sandbox"`
}

// FetchConfig bounds each page render
type FetchConfig struct {
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// PacingConfig is the politeness delay applied after every fetch
type PacingConfig struct {
	MinDelay          time.Duration `mapstructure:"min_delay" yaml:"min_delay"`
	MaxDelay          time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	Addr              string   `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins    []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	RequestsPerSecond float64  `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// ScheduleConfig holds the cron schedule used by serve
type ScheduleConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Cron    string `mapstructure:"cron" yaml:"cron"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultDatabasePath returns the SQLite catalog path under the XDG data directory
func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, AppName, "gpus.db")
}

// ConfigDir returns the XDG config directory for the application
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Load loads configuration from an optional config file, environment variables and defaults.
// When path is empty the file is searched in ., the XDG config dir and /etc/gpustats.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath("/etc/" + AppName + "/")
	}

	// GPUSTATS_DATABASE_DSN -> database.dsn
	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "sqlite", DSN: DefaultDatabasePath(), Table: "gpus"},
		Browser:  BrowserConfig{Headless: true, NoSandbox: true},
		Fetch:    FetchConfig{Timeout: 30 * time.Second, UserAgent: defaultUserAgent},
		Pacing:   PacingConfig{MinDelay: 10 * time.Second, MaxDelay: 15 * time.Second},
		Server: ServerConfig{
			Addr:              ":8080",
			AllowedOrigins:    []string{"http://localhost:3000"},
			RequestsPerSecond: 5,
		},
		Schedule: ScheduleConfig{Enabled: true, Cron: "0 0 3 * * *"},
		Log:      LogConfig{Level: "info", Format: "text"},
		Sources:  DefaultSources(),
	}
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.table", d.Database.Table)

	v.SetDefault("browser.bin", d.Browser.Bin)
	v.SetDefault("browser.headless", d.Browser.Headless)
	v.SetDefault("browser.no_sandbox", d.Browser.NoSandbox)

	v.SetDefault("fetch.timeout", d.Fetch.Timeout.String())
	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)

	v.SetDefault("pacing.min_delay", d.Pacing.MinDelay.String())
	v.SetDefault("pacing.max_delay", d.Pacing.MaxDelay.String())
	v.SetDefault("pacing.requests_per_minute", d.Pacing.RequestsPerMinute)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.requests_per_second", d.Server.RequestsPerSecond)

	v.SetDefault("schedule.enabled", d.Schedule.Enabled)
	v.SetDefault("schedule.cron", d.Schedule.Cron)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDriver, c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return ErrMissingDSN
	}
	if c.Fetch.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Pacing.MinDelay < 0 || c.Pacing.MaxDelay < c.Pacing.MinDelay {
		return ErrInvalidPacing
	}
	if c.Pacing.RequestsPerMinute < 0 {
		return ErrInvalidPacing
	}

	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if seen[s.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateSource, s.Name)
		}
		seen[s.Name] = true
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Source returns the named source configuration
func (c *Config) Source(name string) (SourceConfig, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return SourceConfig{}, false
}

// SelectSources returns the requested sources in config order, or every enabled
// source when names is empty
func (c *Config) SelectSources(names []string) ([]SourceConfig, error) {
	if len(names) == 0 {
		var enabled []SourceConfig
		for _, s := range c.Sources {
			if s.Enabled {
				enabled = append(enabled, s)
			}
		}
		return enabled, nil
	}

	selected := make([]SourceConfig, 0, len(names))
	for _, name := range names {
		s, ok := c.Source(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
		}
		selected = append(selected, s)
	}
	return selected, nil
}
