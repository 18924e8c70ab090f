// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Meli          MeliConfig          `yaml:"meli"`
	Sync          SyncConfig          `yaml:"sync"`
	Users         UsersConfig         `yaml:"users"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// MeliConfig defines Mercado Livre application credentials and endpoints.
// BaseURL and TokenURL are overridable for tests only.
type MeliConfig struct {
	ClientID     string          `yaml:"client_id"`
	ClientSecret string          `yaml:"client_secret"`
	RedirectURI  string          `yaml:"redirect_uri"`
	BaseURL      string          `yaml:"base_url"`
	TokenURL     string          `yaml:"token_url"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines Mercado Livre API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// SyncConfig defines the automatic synchronization behavior.
type SyncConfig struct {
	AutoSync bool          `yaml:"auto_sync"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// UsersConfig defines the user directory bootstrap settings. The master
// password is only used to seed the master user on first start.
type UsersConfig struct {
	MasterPassword string        `yaml:"master_password"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyMeliDefaults(&cfg.Meli)
	applySyncDefaults(&cfg.Sync)
	applyUsersDefaults(&cfg.Users)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyMeliDefaults(m *MeliConfig) {
	if m.BaseURL == "" {
		m.BaseURL = "https://api.mercadolibre.com"
	}
	if m.TokenURL == "" {
		m.TokenURL = "https://api.mercadolibre.com/oauth/token" //nolint:gosec // not a credential
	}
	applyRateLimitDefaults(&m.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 5000
	}
}

func applySyncDefaults(s *SyncConfig) {
	if s.Interval == 0 {
		s.Interval = 30 * time.Minute
	}
	if s.Timeout == 0 {
		s.Timeout = 2 * time.Minute
	}
}

func applyUsersDefaults(u *UsersConfig) {
	if u.SessionTTL == 0 {
		u.SessionTTL = 12 * time.Hour
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	if cfg.Meli.ClientID == "" {
		errs = append(errs, fmt.Errorf("meli.client_id is required"))
	}
	if cfg.Meli.ClientSecret == "" {
		errs = append(errs, fmt.Errorf("meli.client_secret is required"))
	}
	if cfg.Meli.RedirectURI == "" {
		errs = append(errs, fmt.Errorf("meli.redirect_uri is required"))
	}

	if cfg.Users.MasterPassword == "" {
		errs = append(errs, fmt.Errorf("users.master_password is required"))
	}

	if cfg.Sync.Interval < time.Minute {
		errs = append(
			errs,
			fmt.Errorf("sync.interval must be at least 1m (got %s)", cfg.Sync.Interval),
		)
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(
			errs,
			fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"),
		)
	}

	return errors.Join(errs...)
}
