package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no --config flag is given
const DefaultPath = "todo-server.yaml"

// Config holds server settings
type Config struct {
	Addr            string        `yaml:"addr"`             // Listen address
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // Grace period for in-flight requests

	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Todos     TodosConfig     `yaml:"todos"`
	Retention RetentionConfig `yaml:"retention"`
	Log       LogConfig       `yaml:"log"`
}

// DatabaseConfig selects the storage driver
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn"`
}

// AuthConfig configures bearer token verification
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// TodosConfig holds todo handler behavior switches
type TodosConfig struct {
	// DetachOnMove removes a todo from its previous project's list when
	// an update moves it elsewhere. Off by default.
	DetachOnMove bool `yaml:"detach_on_move"`
}

// RetentionConfig controls anonymous data expiration
type RetentionConfig struct {
	AnonymousTTL  time.Duration `yaml:"anonymous_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level   string `yaml:"level"`   // DEBUG, INFO, WARN, ERROR
	File    string `yaml:"file"`    // Path to log file, empty disables file output
	Console bool   `yaml:"console"` // Log to stderr
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "todos.db",
		},
		Retention: RetentionConfig{
			AnonymousTTL:  7 * 24 * time.Hour,
			SweepInterval: time.Hour,
		},
		Log: LogConfig{
			Level:   "INFO",
			Console: true,
		},
	}
}

// Load reads config from path, falling back to defaults when the file does
// not exist, then applies TODO_* environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides fields from environment variables
func (c *Config) applyEnv() error {
	setString(&c.Addr, "TODO_ADDR")
	setString(&c.Database.Driver, "TODO_DB_DRIVER")
	setString(&c.Database.DSN, "TODO_DB_DSN")
	setString(&c.Auth.JWTSecret, "TODO_JWT_SECRET")
	setString(&c.Log.Level, "TODO_LOG_LEVEL")
	setString(&c.Log.File, "TODO_LOG_FILE")

	if err := setBool(&c.Log.Console, "TODO_LOG_CONSOLE"); err != nil {
		return err
	}
	if err := setBool(&c.Todos.DetachOnMove, "TODO_DETACH_ON_MOVE"); err != nil {
		return err
	}
	if err := setDuration(&c.Retention.AnonymousTTL, "TODO_ANONYMOUS_TTL"); err != nil {
		return err
	}
	if err := setDuration(&c.Retention.SweepInterval, "TODO_SWEEP_INTERVAL"); err != nil {
		return err
	}
	return nil
}

// Validate checks that the config can start a server
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth jwt_secret required")
	}
	if c.Retention.AnonymousTTL <= 0 {
		return errors.New("retention anonymous_ttl must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setBool(dst *bool, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
