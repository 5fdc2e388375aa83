// Package config loads generator settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/plexnet/pkg/logging"
	"github.com/dd0wney/plexnet/pkg/validation"
)

// Default configuration values
const (
	DefaultMaxDepth   = 8
	DefaultLogLevel   = "info"
	DefaultNamespace  = "plexnet"
	DefaultRatePolicy = "constant"

	// MaxDepthLimit caps the depth budget. Deeper budgets only make sense for
	// rule sets that terminate on their own.
	MaxDepthLimit = 1024
)

// Environment variables read by ApplyEnv.
const (
	EnvMaxDepth = "PLEXNET_MAX_DEPTH"
	EnvLogLevel = "LOG_LEVEL"
)

// Config holds every tunable of the generator.
type Config struct {
	Generation GenerationConfig `yaml:"generation"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Dump       DumpConfig       `yaml:"dump"`
}

// GenerationConfig bounds network expansion.
type GenerationConfig struct {
	// MaxDepth is the depth budget IncrementNetwork expands with.
	MaxDepth int `yaml:"max_depth"`

	// DedupeReactions drops a generated reaction whose reactants and products
	// match one the same rule already produced.
	DedupeReactions bool `yaml:"dedupe_reactions"`

	// MaxSpecies aborts generation once the network holds this many species.
	// Zero means unbounded.
	MaxSpecies int `yaml:"max_species"`

	// RatePolicy is used by rules that do not name one: "constant" or "mass".
	RatePolicy string `yaml:"rate_policy"`
}

// RecognizerConfig tunes plex recognition.
type RecognizerConfig struct {
	Cache bool `yaml:"cache"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig controls the Prometheus registry a network builds for itself.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// DumpConfig controls network snapshots.
type DumpConfig struct {
	Compress bool `yaml:"compress"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			MaxDepth:        DefaultMaxDepth,
			DedupeReactions: true,
			RatePolicy:      DefaultRatePolicy,
		},
		Recognizer: RecognizerConfig{Cache: true},
		Logging:    LoggingConfig{Level: DefaultLogLevel},
		Metrics:    MetricsConfig{Namespace: DefaultNamespace},
	}
}

// Parse decodes YAML over the defaults and validates the result. Keys absent
// from data keep their default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the file at path, applies environment overrides and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.fillDefaults()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from PLEXNET_MAX_DEPTH and LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvMaxDepth); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxDepth, v, err)
		}
		c.Generation.MaxDepth = depth
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// fillDefaults restores defaults for strings a file set to empty.
func (c *Config) fillDefaults() {
	c.Generation.RatePolicy = validation.DefaultOr(c.Generation.RatePolicy, DefaultRatePolicy)
	c.Logging.Level = validation.DefaultOr(c.Logging.Level, DefaultLogLevel)
	c.Metrics.Namespace = validation.DefaultOr(c.Metrics.Namespace, DefaultNamespace)
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	return validation.NewConfigValidator("Config").
		RangeInt("generation.max_depth", c.Generation.MaxDepth, 0, MaxDepthLimit).
		NonNegative("generation.max_species", c.Generation.MaxSpecies).
		OneOf("generation.rate_policy", c.Generation.RatePolicy, []string{"constant", "mass"}).
		Custom("logging.level", func() error {
			if _, ok := logging.LookupLevel(c.Logging.Level); !ok {
				return fmt.Errorf("unknown level %q", c.Logging.Level)
			}
			return nil
		}).
		Identifier("metrics.namespace", c.Metrics.Namespace).
		Validate()
}

// LogLevel returns the configured level for the logging package.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

var _ validation.Validatable = (*Config)(nil)
