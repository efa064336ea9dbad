package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/orbitsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scenario != "solar" {
		t.Errorf("expected scenario solar, got %s", cfg.Scenario)
	}
	if cfg.Dt != 36000 {
		t.Errorf("expected dt 36000, got %f", cfg.Dt)
	}
	if cfg.Init.Asteroids != 500 {
		t.Errorf("expected 500 asteroids, got %d", cfg.Init.Asteroids)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestSimConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = "brute"
	cfg.Theta = 0.8
	cfg.Bounds.Policy = "fixed"
	cfg.Bounds.HalfWidthAU = 2

	sc, err := cfg.SimConfig()
	if err != nil {
		t.Fatal(err)
	}
	if sc.Mode != dynamo.ModeBruteForce {
		t.Errorf("mode = %s", sc.Mode)
	}
	if sc.Theta != 0.8 {
		t.Errorf("theta = %f", sc.Theta)
	}
	if sc.Bounds != dynamo.BoundsFixed || sc.HalfWidth != 2*dynamo.AU {
		t.Errorf("bounds = %s %g", sc.Bounds, sc.HalfWidth)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative steps", func(c *Config) { c.Steps = -1 }},
		{"negative theta", func(c *Config) { c.Theta = -0.1 }},
		{"bad mode", func(c *Config) { c.Mode = "fmm" }},
		{"bad bounds", func(c *Config) { c.Bounds.Policy = "elastic" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			if err := cfg.Validate(); !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := GetPreset("custom", "earth-moon")
	cfg.Seed = 99
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Seed != 99 || loaded.Scenario != "custom" {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if len(loaded.Bodies) != 2 || loaded.Bodies[1].Orbit != "Earth" {
		t.Errorf("bodies = %+v", loaded.Bodies)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("theta: 0.9\ninit:\n  asteroids: 10\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theta != 0.9 || cfg.Init.Asteroids != 10 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Dt != DefaultDt || cfg.Init.OuterAU != 7 {
		t.Errorf("defaults lost: dt=%f outer=%f", cfg.Dt, cfg.Init.OuterAU)
	}
}

func TestLoad_InvalidEngineFields(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"negative padding", "bounds:\n  padding: -1\n"},
		{"zero half width", "bounds:\n  policy: fixed\n  half_width_au: 0\n"},
		{"negative max depth", "max_depth: -3\n"},
		{"empty policy", "bounds:\n  policy: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sim.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := cfg.Validate(); !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimConfig_DefaultDepth(t *testing.T) {
	sc, err := DefaultConfig().SimConfig()
	if err != nil {
		t.Fatal(err)
	}
	if sc.MaxDepth != dynamo.DefaultMaxDepth || sc.Padding != DefaultPadding {
		t.Errorf("max depth %d padding %g", sc.MaxDepth, sc.Padding)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("theta: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("solar", "planets")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Init.Asteroids != 0 {
		t.Errorf("expected no asteroids, got %d", cfg.Init.Asteroids)
	}

	cfg.Init.Asteroids = 7
	if GetPreset("solar", "planets").Init.Asteroids != 0 {
		t.Error("preset modified through returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("solar", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "default") != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestListPresets(t *testing.T) {
	if len(ListPresets("disk")) != 2 {
		t.Error("expected two disk presets")
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestPresetsValid(t *testing.T) {
	for scenario, presets := range Presets {
		for name, cfg := range presets {
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", scenario, name, err)
			}
		}
	}
}
