// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	Email   EmailConfig   `mapstructure:"email"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig controls access to the MongoDB document store.
type DBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// EmailConfig configures the Resend-backed support notifier.
type EmailConfig struct {
	APIKey string `mapstructure:"api_key"`
	From   string `mapstructure:"from"`
	To     string `mapstructure:"to"`
}

// HTTPConfig bounds request handling.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// RetryConfig governs the retry wrapper around dashboard persistence calls.
type RetryConfig struct {
	MaxAttempts      int `mapstructure:"max_attempts"`
	BackoffInitialMs int `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int `mapstructure:"backoff_max_ms"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Defaults mirroring the deployed service.
const (
	defaultFromEmail = "Clausea Alerts <alerts@contact.clausea.co>"
	defaultToEmail   = "lvndry@protonmail.com"
	defaultDatabase  = "clausea"
)

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLAUSEA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("db.uri", "mongodb://localhost:27017/clausea")
	v.SetDefault("email.from", defaultFromEmail)
	v.SetDefault("email.to", defaultToEmail)
	v.SetDefault("http.timeout_seconds", 60)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.backoff_initial_ms", 250)
	v.SetDefault("retry.backoff_max_ms", 2000)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.DB.URI == "" {
		return fmt.Errorf("db.uri must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry.max_attempts must be > 0")
	}
	return nil
}

// DatabaseName resolves the Mongo database: the explicit setting wins, then
// the last path segment of the URI (query string stripped), then "clausea".
func (c Config) DatabaseName() string {
	if c.DB.Database != "" {
		return c.DB.Database
	}
	uri := c.DB.URI
	if idx := strings.LastIndex(uri, "/"); idx >= 0 && idx < len(uri)-1 {
		name := uri[idx+1:]
		if q := strings.Index(name, "?"); q >= 0 {
			name = name[:q]
		}
		if name != "" && !strings.Contains(name, ":") && !strings.Contains(name, "@") {
			return name
		}
	}
	return defaultDatabase
}

// RequestTimeout converts the HTTP timeout into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// RetryBackoff converts the retry knobs into durations for the retry wrapper.
func (c Config) RetryBackoff() (initial, max time.Duration) {
	return time.Duration(c.Retry.BackoffInitialMs) * time.Millisecond,
		time.Duration(c.Retry.BackoffMaxMs) * time.Millisecond
}
