// Package config loads simulation settings from YAML with sane defaults.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	Ticks         int    `yaml:"ticks"`
	Seed          int64  `yaml:"seed"`
	Workers       int    `yaml:"workers"`
	GridSize      int    `yaml:"grid_size"`
	InitialAgents int    `yaml:"initial_agents"`
	PopulationCap int    `yaml:"population_cap"`
	DBPath        string `yaml:"db_path"`
	APIAddr       string `yaml:"api_addr"`
	LogLevel      string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Ticks:         500,
		Seed:          42,
		Workers:       runtime.NumCPU(),
		GridSize:      8,
		InitialAgents: 10,
		PopulationCap: 120,
		DBPath:        "thalren.db",
		APIAddr:       ":8080",
		LogLevel:      "info",
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", c.Ticks)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.GridSize < 4 {
		return fmt.Errorf("grid_size must be at least 4, got %d", c.GridSize)
	}
	if c.InitialAgents <= 0 {
		return fmt.Errorf("initial_agents must be positive, got %d", c.InitialAgents)
	}
	if c.PopulationCap < c.InitialAgents {
		return fmt.Errorf("population_cap %d below initial_agents %d", c.PopulationCap, c.InitialAgents)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
