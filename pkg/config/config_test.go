package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dd0wney/plexnet/pkg/logging"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Generation.MaxDepth != DefaultMaxDepth || !cfg.Generation.DedupeReactions || !cfg.Recognizer.Cache {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if cfg.LogLevel() != logging.InfoLevel {
		t.Errorf("LogLevel = %v", cfg.LogLevel())
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		check     func(*testing.T, *Config)
		errSubstr string
	}{
		{
			name: "partial file keeps defaults",
			yaml: "generation:\n  max_depth: 2\n",
			check: func(t *testing.T, c *Config) {
				if c.Generation.MaxDepth != 2 {
					t.Errorf("MaxDepth = %d", c.Generation.MaxDepth)
				}
				if !c.Generation.DedupeReactions || c.Metrics.Namespace != DefaultNamespace {
					t.Errorf("defaults lost: %+v", c)
				}
			},
		},
		{
			name: "every section",
			yaml: `
generation:
  max_depth: 0
  dedupe_reactions: false
  max_species: 500
  rate_policy: mass
recognizer:
  cache: false
logging:
  level: debug
metrics:
  enabled: true
  namespace: egfr
dump:
  compress: true
`,
			check: func(t *testing.T, c *Config) {
				want := Config{
					Generation: GenerationConfig{MaxDepth: 0, MaxSpecies: 500, RatePolicy: "mass"},
					Recognizer: RecognizerConfig{Cache: false},
					Logging:    LoggingConfig{Level: "debug"},
					Metrics:    MetricsConfig{Enabled: true, Namespace: "egfr"},
					Dump:       DumpConfig{Compress: true},
				}
				if *c != want {
					t.Errorf("got %+v, want %+v", *c, want)
				}
			},
		},
		{
			name: "empty strings fall back",
			yaml: "logging:\n  level: \"\"\nmetrics:\n  namespace: \"\"\n",
			check: func(t *testing.T, c *Config) {
				if c.Logging.Level != DefaultLogLevel || c.Metrics.Namespace != DefaultNamespace {
					t.Errorf("got %+v", c)
				}
			},
		},
		{name: "negative depth", yaml: "generation:\n  max_depth: -1\n", errSubstr: "generation.max_depth"},
		{name: "negative species cap", yaml: "generation:\n  max_species: -3\n", errSubstr: "generation.max_species"},
		{name: "unknown policy", yaml: "generation:\n  rate_policy: linear\n", errSubstr: "generation.rate_policy"},
		{name: "bad level", yaml: "logging:\n  level: loud\n", errSubstr: "logging.level"},
		{name: "bad namespace", yaml: "metrics:\n  namespace: my-app\n", errSubstr: "metrics.namespace"},
		{name: "not yaml", yaml: "generation: [", errSubstr: "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			if tt.errSubstr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errSubstr) {
					t.Fatalf("Parse error = %v, want mention of %q", err, tt.errSubstr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Generation.MaxDepth = -1
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"max_depth", "logging.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plexnet.yaml")
	if err := os.WriteFile(path, []byte("generation:\n  max_depth: 3\nlogging:\n  level: warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvMaxDepth, "")
	t.Setenv(EnvLogLevel, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generation.MaxDepth != 3 || cfg.LogLevel() != logging.WarnLevel {
		t.Errorf("got %+v", cfg)
	}

	t.Setenv(EnvMaxDepth, "5")
	t.Setenv(EnvLogLevel, "debug")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load with env: %v", err)
	}
	if cfg.Generation.MaxDepth != 5 || cfg.Logging.Level != "debug" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}

	t.Setenv(EnvMaxDepth, "deep")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), EnvMaxDepth) {
		t.Errorf("expected env parse error, got %v", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
