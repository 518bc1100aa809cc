package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// WorldSim holds all configuration for the world simulation server.
type WorldSim struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	Database DatabaseConfig `yaml:"database"`
	World    WorldConfig    `yaml:"world"`
	Stats    StatsConfig    `yaml:"stats"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"` // 0 = pgxpool default
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// WorldConfig controls the tick loop and the initial population.
type WorldConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Workers      int           `yaml:"workers"` // shards ticked in parallel
	Spawns       []SpawnEntry  `yaml:"spawns"`
}

// SpawnEntry spawns Count units of a template at startup.
type SpawnEntry struct {
	Template int32 `yaml:"template"`
	Count    int   `yaml:"count"`
}

// StatsConfig controls modifier bookkeeping.
type StatsConfig struct {
	Ledger          bool          `yaml:"ledger"`           // track apply/unapply pairs
	PersistInterval time.Duration `yaml:"persist_interval"` // 0 = save only on shutdown
}

// DefaultWorldSim returns WorldSim config with sensible defaults.
func DefaultWorldSim() WorldSim {
	return WorldSim{
		LogLevel: "info",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "worldsim",
			Password: "worldsim",
			DBName:   "worldsim",
			SSLMode:  "disable",
			MaxConns: 8,
		},
		World: WorldConfig{
			TickInterval: 100 * time.Millisecond,
			Workers:      4,
		},
		Stats: StatsConfig{
			PersistInterval: time.Minute,
		},
	}
}

// Validate checks values that would break the tick loop.
func (c WorldSim) Validate() error {
	var errs []error
	if c.World.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("world.tick_interval must be positive, got %s", c.World.TickInterval))
	}
	if c.World.Workers < 1 {
		errs = append(errs, fmt.Errorf("world.workers must be at least 1, got %d", c.World.Workers))
	}
	if c.Database.MaxConns < 0 {
		errs = append(errs, fmt.Errorf("database.max_conns must not be negative, got %d", c.Database.MaxConns))
	}
	if c.Stats.PersistInterval < 0 {
		errs = append(errs, fmt.Errorf("stats.persist_interval must not be negative, got %s", c.Stats.PersistInterval))
	}
	for i, s := range c.World.Spawns {
		if s.Count < 0 {
			errs = append(errs, fmt.Errorf("world.spawns[%d].count must not be negative", i))
		}
	}
	return errors.Join(errs...)
}

// LoadWorldSim loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadWorldSim(path string) (WorldSim, error) {
	cfg := DefaultWorldSim()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}
