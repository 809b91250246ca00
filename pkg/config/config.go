package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/just-nibble/starsync/internal/adapters/validators"
)

const (
	DefaultGitHubAPIURL    = "https://api.github.com/"
	DefaultCronSchedule    = "*/5 * * * *"
	DefaultReadmeFreshness = 24 * time.Hour
	DefaultHTTPAddress     = ":8080"
	DefaultEnvFile         = ".env"
)

// ErrMissingCredentials is reported when the token or the username is absent.
var ErrMissingCredentials = errors.New("GITHUB_TOKEN or GITHUB_USERNAME is not set")

type Config struct {
	GitHubToken         string
	GitHubUsername      validators.Username
	GitHubAPIURL        string
	SyncOnBoot          bool
	SyncCronEnabled     bool
	CronSchedule        string
	ReadmeFreshness     time.Duration
	RateLimitMaxRetries int
	Database            DatabaseConfig
	HTTPAddress         string
	LogLevel            string
	LogFormat           string
}

type DatabaseConfig struct {
	Driver   string
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// DSN returns DATABASE_URL when set, otherwise a postgres keyword DSN
// assembled from the DB_* settings.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port,
	)
}

// HasCredentials reports whether a sync run can talk to GitHub at all.
func (c Config) HasCredentials() bool {
	return c.GitHubToken != "" && c.GitHubUsername != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GITHUB_API_URL", DefaultGitHubAPIURL)
	v.SetDefault("ENABLE_SYNC_ON_BOOT", "false")
	v.SetDefault("ENABLE_SYNC_CRON", "false")
	v.SetDefault("CRON_SCHEDULE", DefaultCronSchedule)
	v.SetDefault("README_FRESHNESS", DefaultReadmeFreshness)
	v.SetDefault("RATE_LIMIT_MAX_RETRIES", 0)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "starsync")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("HTTP_ADDRESS", DefaultHTTPAddress)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Load resolves the configuration from the environment and, when present,
// from an env-format file. An explicit path must exist; the default .env
// file is optional.
func Load(v *viper.Viper, path string) (Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			file = DefaultEnvFile
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := Config{
		GitHubToken:         v.GetString("GITHUB_TOKEN"),
		GitHubUsername:      validators.Username(v.GetString("GITHUB_USERNAME")),
		GitHubAPIURL:        v.GetString("GITHUB_API_URL"),
		SyncOnBoot:          ParseBool(v.GetString("ENABLE_SYNC_ON_BOOT"), false),
		SyncCronEnabled:     ParseBool(v.GetString("ENABLE_SYNC_CRON"), false),
		CronSchedule:        unquote(v.GetString("CRON_SCHEDULE")),
		ReadmeFreshness:     v.GetDuration("README_FRESHNESS"),
		RateLimitMaxRetries: v.GetInt("RATE_LIMIT_MAX_RETRIES"),
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			Port:     v.GetString("DB_PORT"),
		},
		HTTPAddress: v.GetString("HTTP_ADDRESS"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
	}

	if cfg.CronSchedule == "" {
		cfg.CronSchedule = DefaultCronSchedule
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings that would otherwise fail late. Missing
// credentials are not an error: sync runs are skipped instead.
func (c Config) Validate() error {
	if c.GitHubUsername != "" {
		if err := c.GitHubUsername.Validate(); err != nil {
			return fmt.Errorf("GITHUB_USERNAME: %w", err)
		}
	}
	if c.SyncCronEnabled {
		if _, err := cron.ParseStandard(c.CronSchedule); err != nil {
			return fmt.Errorf("CRON_SCHEDULE %q: %w", c.CronSchedule, err)
		}
	}
	if c.ReadmeFreshness <= 0 {
		return fmt.Errorf("README_FRESHNESS must be positive, got %s", c.ReadmeFreshness)
	}
	if c.RateLimitMaxRetries < 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_RETRIES must not be negative, got %d", c.RateLimitMaxRetries)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER %q is not supported", c.Database.Driver)
	}

	return nil
}

// ParseBool accepts the usual spellings of a flag. Anything else yields def.
func ParseBool(value string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimPrefix(s, `'`)
	s = strings.TrimSuffix(s, `"`)
	s = strings.TrimSuffix(s, `'`)
	return s
}
