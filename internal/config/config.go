package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Simulation holds all configuration for the stat simulator.
type Simulation struct {
	LogLevel string `yaml:"log_level"`

	// Optional Postgres snapshot storage
	Database DatabaseConfig `yaml:"database"`

	// Optional sqlite event journal
	Journal JournalConfig `yaml:"journal"`

	Engine    EngineDefaults `yaml:"engine"`
	Blueprint Blueprint      `yaml:"blueprint"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"` // overrides the fields below
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// JournalConfig locates the sqlite event journal. Empty path disables it.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// DefaultSimulation returns Simulation config with sensible defaults.
func DefaultSimulation() Simulation {
	return Simulation{
		LogLevel: "info",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "statcore",
			Password: "statcore",
			DBName:   "statcore",
			SSLMode:  "disable",
		},
		Engine:    DefaultEngine(),
		Blueprint: DefaultBlueprint(),
	}
}

// LoadSimulation loads config from a YAML file, then applies STATCORE_* environment
// overrides and validates the blueprint.
// If the file doesn't exist, defaults are used.
func LoadSimulation(path string) (Simulation, error) {
	cfg := DefaultSimulation()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// a file that defines its own blueprint replaces the default one
		cfg.Blueprint = Blueprint{}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
		if cfg.Blueprint.IsEmpty() {
			cfg.Blueprint = DefaultBlueprint()
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Engine.Validate(); err != nil {
		return cfg, fmt.Errorf("validating engine defaults: %w", err)
	}
	if err := cfg.Blueprint.Validate(); err != nil {
		return cfg, fmt.Errorf("validating blueprint: %w", err)
	}

	return cfg, nil
}

// envOverrides lists the STATCORE_* variables that take precedence over the file.
type envOverrides struct {
	LogLevel            string `env:"STATCORE_LOG_LEVEL"`
	DatabaseEnabled     *bool  `env:"STATCORE_DATABASE_ENABLED"`
	DatabaseDSN         string `env:"STATCORE_DATABASE_DSN"`
	JournalPath         string `env:"STATCORE_JOURNAL_PATH"`
	MaxPropagationDepth int    `env:"STATCORE_MAX_PROPAGATION_DEPTH"`
}

func applyEnv(cfg *Simulation) error {
	o, err := env.ParseAs[envOverrides]()
	if err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.DatabaseEnabled != nil {
		cfg.Database.Enabled = *o.DatabaseEnabled
	}
	if o.DatabaseDSN != "" {
		cfg.Database.URL = o.DatabaseDSN
		cfg.Database.Enabled = true
	}
	if o.JournalPath != "" {
		cfg.Journal.Path = o.JournalPath
	}
	if o.MaxPropagationDepth != 0 {
		cfg.Engine.MaxPropagationDepth = o.MaxPropagationDepth
	}
	return nil
}
