package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "ticks: 50\nseed: 9\nworkers: 3\npopulation_cap: 40\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Ticks != 50 || cfg.Seed != 9 || cfg.Workers != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.GridSize != Default().GridSize {
		t.Fatalf("unset field lost its default: grid_size = %d", cfg.GridSize)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"zero ticks", func(c *Config) { c.Ticks = 0 }},
		{"tiny grid", func(c *Config) { c.GridSize = 2 }},
		{"cap below seed population", func(c *Config) { c.PopulationCap = 1 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: validation passed, want error", tc.name)
		}
	}
}
