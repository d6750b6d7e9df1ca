package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/soochol/stickyparam/internal/param"
)

const (
	// EnvDatabaseURL overrides database.url when set.
	EnvDatabaseURL = "STICKYPARAM_DATABASE_URL"
	// EnvJWTSecret overrides auth.jwt_secret when set.
	EnvJWTSecret = "STICKYPARAM_JWT_SECRET"
)

// Config holds the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	History  HistoryConfig  `yaml:"history"`
	Log      LogConfig      `yaml:"log"`
	Auth     AuthConfig     `yaml:"auth"`
	Jobs     []param.Job    `yaml:"jobs"` // seeded at startup when absent from the store
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// HistoryConfig bounds how much run history a resolution reads.
type HistoryConfig struct {
	Lookback int `yaml:"lookback"` // runs fetched per page while searching history (default: 50)
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json | terminal
}

// AuthConfig protects the HTTP API. An empty secret disables authentication.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"` // HS256 key for bearer tokens
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		History: HistoryConfig{Lookback: 50},
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML configuration file at path and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads ".env" if present, then tries "config.yaml" from the
// current directory. If the file does not exist, it returns sensible defaults.
// Any other error (e.g. permission denied, malformed YAML) is returned.
func LoadDefault() (*Config, error) {
	return LoadFile("config.yaml")
}

// LoadFile is LoadDefault with an explicit config path.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = defaults()
		if err := cfg.finish(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// finish applies environment overrides, fills zero values, and validates
// seeded jobs.
func (c *Config) finish() error {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.Auth.JWTSecret = v
	}
	if c.History.Lookback <= 0 {
		c.History.Lookback = 50
	}
	for i := range c.Jobs {
		if err := c.Jobs[i].Normalize(); err != nil {
			return fmt.Errorf("config jobs[%d]: %w", i, err)
		}
	}
	return nil
}
