// Package config handles configuration loading and validation for taskboard.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported store drivers.
const (
	DriverSQLite    = "sqlite"
	DriverMySQL     = "mysql"
	DriverFirestore = "firestore"
)

// APIKeyEnv is the environment variable holding the Gemini credential.
const APIKeyEnv = "GEMINI_API_KEY"

// Config holds the application configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Store    Store          `yaml:"store"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Board    BoardConfig    `yaml:"board"`
}

// HTTPConfig configures the JSON API server.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Store selects and configures the task store backend.
type Store struct {
	Driver    string          `yaml:"driver"`    // sqlite, mysql or firestore
	Path      string          `yaml:"path"`      // sqlite file, or :memory:
	DSN       string          `yaml:"dsn"`       // mysql, go-sql-driver format
	Firestore FirestoreConfig `yaml:"firestore"` // firestore only
}

// FirestoreConfig locates the Firestore collection holding tasks.
type FirestoreConfig struct {
	ProjectID       string `yaml:"project_id"`
	Collection      string `yaml:"collection"`
	CredentialsFile string `yaml:"credentials_file"`
}

// GeminiConfig configures task generation.
type GeminiConfig struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	MinTasks int    `yaml:"min_tasks"`
	MaxTasks int    `yaml:"max_tasks"`
}

type SnapshotConfig struct {
	Path string `yaml:"path"`
	Auto bool   `yaml:"auto"` // export after every write
}

// BoardConfig configures the terminal board.
type BoardConfig struct {
	Server          string        `yaml:"server"` // remote API base URL; empty means local store
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Store: Store{
			Driver: DriverSQLite,
			Path:   ".taskboard/taskboard.db",
			Firestore: FirestoreConfig{
				Collection: "tasks",
			},
		},
		Gemini: GeminiConfig{
			Model:    "gemini-2.5-flash-lite",
			MinTasks: 5,
			MaxTasks: 12,
		},
		Snapshot: SnapshotConfig{
			Path: ".taskboard/snapshot.jsonl",
		},
		Board: BoardConfig{
			RefreshInterval: 2 * time.Second,
		},
	}
}

// Load reads configuration from the given path. If configPath is empty or
// doesn't exist, defaults are used. The Gemini API key is taken from the
// environment when the file does not set one.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv(APIKeyEnv)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = defaults.HTTP.Addr
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = defaults.HTTP.ShutdownTimeout
	}
	if c.Store.Driver == "" {
		c.Store.Driver = defaults.Store.Driver
	}
	if c.Store.Driver == DriverSQLite && c.Store.Path == "" {
		c.Store.Path = defaults.Store.Path
	}
	if c.Store.Firestore.Collection == "" {
		c.Store.Firestore.Collection = defaults.Store.Firestore.Collection
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaults.Gemini.Model
	}
	if c.Gemini.MinTasks == 0 {
		c.Gemini.MinTasks = defaults.Gemini.MinTasks
	}
	if c.Gemini.MaxTasks == 0 {
		c.Gemini.MaxTasks = defaults.Gemini.MaxTasks
	}
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = defaults.Snapshot.Path
	}
	if c.Board.RefreshInterval == 0 {
		c.Board.RefreshInterval = defaults.Board.RefreshInterval
	}
}
