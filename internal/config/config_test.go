package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad version", func(c *Config) { c.Version = 2 }},
		{"no connections", func(c *Config) { c.Storage.MaxOpenConns = 0 }},
		{"idle above open", func(c *Config) { c.Storage.MaxIdleConns = 99 }},
		{"zero ttl", func(c *Config) { c.Cache.TtlSeconds = 0 }},
		{"inverted mode limits", func(c *Config) { c.Navigation.BalancedLimit = 1 }},
		{"depth ceiling below default", func(c *Config) { c.Pathfinder.DepthCeiling = 1 }},
		{"cost ceiling out of range", func(c *Config) { c.Pathfinder.CostCeiling = 1.5 }},
		{"strategy cap too large", func(c *Config) { c.Strategies[0].MaxResults = 9 }},
		{"strategy cap too small", func(c *Config) { c.Strategies[0].MaxResults = 1 }},
		{"strategy floor out of range", func(c *Config) { c.Strategies[0].RelevanceFloor = 1.2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation to fail")
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if cfg.Cache.TtlSeconds != DefaultConfig().Cache.TtlSeconds {
			t.Error("missing config should yield defaults")
		}
	})

	t.Run("round trip", func(t *testing.T) {
		dir := t.TempDir()

		cfg := DefaultConfig()
		cfg.Cache.TtlSeconds = 42
		cfg.Navigation.FocusLimit = 3
		if err := cfg.Save(dir); err != nil {
			t.Fatalf("Save: %v", err)
		}

		loaded, err := LoadConfig(dir)
		if err != nil {
			t.Fatalf("LoadConfig: %v", err)
		}
		if loaded.Cache.TtlSeconds != 42 {
			t.Errorf("ttl = %d, want 42", loaded.Cache.TtlSeconds)
		}
		if loaded.Navigation.FocusLimit != 3 {
			t.Errorf("focus limit = %d, want 3", loaded.Navigation.FocusLimit)
		}

		// Untouched fields keep their defaults
		if loaded.Pathfinder.DepthCeiling != 4 {
			t.Errorf("depth ceiling = %d, want default 4", loaded.Pathfinder.DepthCeiling)
		}
	})

	t.Run("saved file lands in the dot directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := DefaultConfig().Save(dir); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, ".cnav", "config.json")); err != nil {
			t.Fatalf("config file not written: %v", err)
		}
	})
}
