// Package config holds the configuration for the busyserve web API.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cast"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v2"
)

// Config is the complete busyserve configuration: defaults, overridden by
// the YAML file, overridden by environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	CORS     CORSConfig     `yaml:"cors"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	RateLimitPerMinute int    `yaml:"rateLimitPerMinute"`
}

// AuthConfig enables HTTP basic auth when both fields are set.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// DefaultsConfig holds fallbacks for requests that omit parameters.
type DefaultsConfig struct {
	Dim   float64 `yaml:"dim"`
	Color string  `yaml:"color"`
}

// LogConfig controls logging output and rotation.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8000,
			RateLimitPerMinute: 120,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Defaults: DefaultsConfig{
			Dim:   1.0,
			Color: "green",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, and environment overrides, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BUSYLIGHT_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("BUSYLIGHT_PORT"); v != "" {
		c.Server.Port = cast.ToInt(v)
	}
	if v := os.Getenv("BUSYLIGHT_API_USER"); v != "" {
		c.Auth.Username = v
	}
	if v := os.Getenv("BUSYLIGHT_API_PASS"); v != "" {
		c.Auth.Password = v
	}
	if v := os.Getenv("BUSYLIGHT_DEBUG"); v != "" && cast.ToBool(v) {
		c.Log.Level = "debug"
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("invalid rate limit: %d", c.Server.RateLimitPerMinute)
	}
	if c.Defaults.Dim < 0 || c.Defaults.Dim > 1 {
		return fmt.Errorf("invalid default dim: %g", c.Defaults.Dim)
	}
	if (c.Auth.Username == "") != (c.Auth.Password == "") {
		return fmt.Errorf("auth requires both username and password")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	return nil
}

// AuthEnabled reports whether basic auth is configured.
func (c *Config) AuthEnabled() bool {
	return c.Auth.Username != "" && c.Auth.Password != ""
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Logger builds the slog logger described by the Log section, rotating the
// log file when one is configured.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	switch c.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	if c.Log.File != "" {
		w = &lumberjack.Logger{
			Filename:   c.Log.File,
			MaxSize:    c.Log.MaxSizeMB,
			MaxBackups: c.Log.MaxBackups,
			MaxAge:     c.Log.MaxAgeDays,
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
