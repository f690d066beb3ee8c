// Package config loads and validates the cnav configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete cnav configuration
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Storage    StorageConfig    `json:"storage" mapstructure:"storage"`
	Cache      CacheConfig      `json:"cache" mapstructure:"cache"`
	Navigation NavigationConfig `json:"navigation" mapstructure:"navigation"`
	Pathfinder PathfinderConfig `json:"pathfinder" mapstructure:"pathfinder"`
	Scoring    ScoringConfig    `json:"scoring" mapstructure:"scoring"`
	Strategies []StrategyConfig `json:"strategies" mapstructure:"strategies"`
	Decisions  DecisionsConfig  `json:"decisions" mapstructure:"decisions"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// StorageConfig bounds the SQLite connection pool and query deadlines
type StorageConfig struct {
	MaxOpenConns   int `json:"maxOpenConns" mapstructure:"maxOpenConns"`
	MaxIdleConns   int `json:"maxIdleConns" mapstructure:"maxIdleConns"`
	BusyTimeoutMs  int `json:"busyTimeoutMs" mapstructure:"busyTimeoutMs"`
	QueryTimeoutMs int `json:"queryTimeoutMs" mapstructure:"queryTimeoutMs"`
}

// CacheConfig controls the engine-owned query cache
type CacheConfig struct {
	TtlSeconds int `json:"ttlSeconds" mapstructure:"ttlSeconds"`
	MaxEntries int `json:"maxEntries" mapstructure:"maxEntries"`
}

// NavigationConfig holds the per-mode result ceilings
type NavigationConfig struct {
	FocusLimit    int `json:"focusLimit" mapstructure:"focusLimit"`
	BalancedLimit int `json:"balancedLimit" mapstructure:"balancedLimit"`
	ExploreLimit  int `json:"exploreLimit" mapstructure:"exploreLimit"`

	// FocusComplexityCeiling drops elements above this complexity when
	// a list-in-file query runs in focus mode with a complexity filter
	FocusComplexityCeiling float64 `json:"focusComplexityCeiling" mapstructure:"focusComplexityCeiling"`
}

// PathfinderConfig bounds path search
type PathfinderConfig struct {
	DefaultMaxDepth int     `json:"defaultMaxDepth" mapstructure:"defaultMaxDepth"`
	DepthCeiling    int     `json:"depthCeiling" mapstructure:"depthCeiling"`
	CostCeiling     float64 `json:"costCeiling" mapstructure:"costCeiling"`
}

// ScoringConfig carries the scorer weight tables
type ScoringConfig struct {
	Relevance RelevanceWeightsConfig `json:"relevance" mapstructure:"relevance"`
	Load      LoadWeightsConfig      `json:"load" mapstructure:"load"`
}

// RelevanceWeightsConfig weights the relevance signals; weights are
// normalized to sum to 1.0 before use
type RelevanceWeightsConfig struct {
	Structural float64 `json:"structural" mapstructure:"structural"`
	Task       float64 `json:"task" mapstructure:"task"`
	Pattern    float64 `json:"pattern" mapstructure:"pattern"`
	Recency    float64 `json:"recency" mapstructure:"recency"`
	Decision   float64 `json:"decision" mapstructure:"decision"`
}

// LoadWeightsConfig weights the cognitive-load components
type LoadWeightsConfig struct {
	Complexity    float64 `json:"complexity" mapstructure:"complexity"`
	ContextSwitch float64 `json:"contextSwitch" mapstructure:"contextSwitch"`
	Distance      float64 `json:"distance" mapstructure:"distance"`
	Unfamiliarity float64 `json:"unfamiliarity" mapstructure:"unfamiliarity"`
}

// StrategyConfig is one named filtering-strategy bundle, bound to an
// attention state
type StrategyConfig struct {
	Name           string  `json:"name" mapstructure:"name"`
	Attention      string  `json:"attention" mapstructure:"attention"`
	MaxResults     int     `json:"maxResults" mapstructure:"maxResults"`
	RelevanceFloor float64 `json:"relevanceFloor" mapstructure:"relevanceFloor"`
	LoadCeiling    float64 `json:"loadCeiling" mapstructure:"loadCeiling"`
	MinimalMin     int     `json:"minimalMin" mapstructure:"minimalMin"`
	HighMax        int     `json:"highMax" mapstructure:"highMax"`
}

// DecisionsConfig controls the decision-link collaborator
type DecisionsConfig struct {
	Enabled         bool `json:"enabled" mapstructure:"enabled"`
	LookupTimeoutMs int  `json:"lookupTimeoutMs" mapstructure:"lookupTimeoutMs"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Storage: StorageConfig{
			MaxOpenConns:   8,
			MaxIdleConns:   2,
			BusyTimeoutMs:  5000,
			QueryTimeoutMs: 3000,
		},
		Cache: CacheConfig{
			TtlSeconds: 300,
			MaxEntries: 2048,
		},
		Navigation: NavigationConfig{
			FocusLimit:             5,
			BalancedLimit:          15,
			ExploreLimit:           50,
			FocusComplexityCeiling: 0.6,
		},
		Pathfinder: PathfinderConfig{
			DefaultMaxDepth: 3,
			DepthCeiling:    4,
			CostCeiling:     0.7,
		},
		Scoring: ScoringConfig{
			Relevance: RelevanceWeightsConfig{
				Structural: 0.3,
				Task:       0.25,
				Pattern:    0.25,
				Recency:    0.1,
				Decision:   0.1,
			},
			Load: LoadWeightsConfig{
				Complexity:    0.3,
				ContextSwitch: 0.3,
				Distance:      0.2,
				Unfamiliarity: 0.2,
			},
		},
		Strategies: []StrategyConfig{
			{Name: "expansive", Attention: "peak", MaxResults: 5, RelevanceFloor: 0.3, LoadCeiling: 0.9, MinimalMin: 1, HighMax: 1},
			{Name: "balanced", Attention: "steady", MaxResults: 4, RelevanceFloor: 0.4, LoadCeiling: 0.75, MinimalMin: 1, HighMax: 1},
			{Name: "guarded", Attention: "wandering", MaxResults: 3, RelevanceFloor: 0.5, LoadCeiling: 0.6, MinimalMin: 1, HighMax: 0},
			{Name: "minimal", Attention: "depleted", MaxResults: 2, RelevanceFloor: 0.6, LoadCeiling: 0.45, MinimalMin: 1, HighMax: 0},
		},
		Decisions: DecisionsConfig{
			Enabled:         true,
			LookupTimeoutMs: 250,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .cnav/config.json
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("repoRoot", ".")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".cnav"))

	if err := v.ReadInConfig(); err != nil {
		// Missing config means defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to .cnav/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".cnav")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Storage.MaxOpenConns < 1 {
		return &ConfigError{Field: "storage.maxOpenConns", Message: "must be at least 1"}
	}
	if c.Storage.MaxIdleConns > c.Storage.MaxOpenConns {
		return &ConfigError{Field: "storage.maxIdleConns", Message: "cannot exceed maxOpenConns"}
	}
	if c.Cache.TtlSeconds < 1 {
		return &ConfigError{Field: "cache.ttlSeconds", Message: "must be at least 1"}
	}
	if c.Navigation.FocusLimit < 1 || c.Navigation.BalancedLimit < c.Navigation.FocusLimit ||
		c.Navigation.ExploreLimit < c.Navigation.BalancedLimit {
		return &ConfigError{Field: "navigation", Message: "mode limits must be ascending and positive"}
	}
	if c.Pathfinder.DefaultMaxDepth < 1 || c.Pathfinder.DepthCeiling < c.Pathfinder.DefaultMaxDepth {
		return &ConfigError{Field: "pathfinder", Message: "depth bounds must be positive and ordered"}
	}
	if c.Pathfinder.CostCeiling <= 0 || c.Pathfinder.CostCeiling > 1 {
		return &ConfigError{Field: "pathfinder.costCeiling", Message: "must be in (0, 1]"}
	}
	for _, s := range c.Strategies {
		if s.MaxResults < 2 || s.MaxResults > 5 {
			return &ConfigError{Field: "strategies." + s.Name, Message: "maxResults must be between 2 and 5"}
		}
		if s.RelevanceFloor < 0 || s.RelevanceFloor > 1 || s.LoadCeiling < 0 || s.LoadCeiling > 1 {
			return &ConfigError{Field: "strategies." + s.Name, Message: "floors and ceilings must be in [0, 1]"}
		}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
