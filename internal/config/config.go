package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Daemon holds all configuration for the visibility daemon.
type Daemon struct {
	LogLevel string `yaml:"log_level" env:"VISIBILITY_LOG_LEVEL"`

	// Visibility settings file, used when storage is "file"
	VisibilityPath string `yaml:"visibility_path" env:"VISIBILITY_SETTINGS_PATH"`

	// Storage backend: "file" or "postgres"
	Storage  string         `yaml:"storage" env:"VISIBILITY_STORAGE"`
	Database DatabaseConfig `yaml:"database" envPrefix:"VISIBILITY_DATABASE_"`

	// Frame pass (default interval: 16ms, ~60 fps)
	FrameInterval time.Duration `yaml:"frame_interval" env:"VISIBILITY_FRAME_INTERVAL"`
	// Void list persistence
	FlushInterval time.Duration `yaml:"flush_interval" env:"VISIBILITY_FLUSH_INTERVAL"`
	// 0 = runtime.NumCPU()
	Workers int `yaml:"workers" env:"VISIBILITY_WORKERS"`
	// Entity count before the worker pool kicks in
	ParallelThreshold int `yaml:"parallel_threshold" env:"VISIBILITY_PARALLEL_THRESHOLD"`

	// Capture replay
	CapturePath string `yaml:"capture_path" env:"VISIBILITY_CAPTURE_PATH"`
	Loop        bool   `yaml:"loop" env:"VISIBILITY_LOOP"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// DefaultDaemon returns Daemon config with sensible defaults.
func DefaultDaemon() Daemon {
	return Daemon{
		LogLevel:          "info",
		VisibilityPath:    "config/visibility.yaml",
		Storage:           StorageFile,
		FrameInterval:     16 * time.Millisecond,
		FlushInterval:     5 * time.Second,
		ParallelThreshold: 1000,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "visibility",
			Password: "visibility",
			DBName:   "visibility",
			SSLMode:  "disable",
		},
	}
}

// LoadDaemon loads daemon config from a YAML file and applies environment
// overrides on top. If the file doesn't exist, defaults are used.
func LoadDaemon(path string) (Daemon, error) {
	cfg := DefaultDaemon()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// ParseEnv loads configuration overrides from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail later at runtime.
func (d Daemon) Validate() error {
	switch d.Storage {
	case StorageFile, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage %q", d.Storage)
	}
	if d.FrameInterval <= 0 {
		return fmt.Errorf("frame_interval must be positive, got %s", d.FrameInterval)
	}
	if d.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", d.Workers)
	}
	return nil
}
