package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/tissueheat/internal/heat"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Constants.N != 101 {
		t.Errorf("expected n 101, got %d", cfg.Constants.N)
	}
	if cfg.Constants.TA <= 0 {
		t.Error("t_a should be positive")
	}
	if len(cfg.Constants.QExplicit) != 3 {
		t.Errorf("expected 3 explicit ratios, got %d", len(cfg.Constants.QExplicit))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`constants:
  n: 41
  q_crank: [0.25]
settings:
  data_dir: out
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Constants.N != 41 {
		t.Errorf("expected n 41, got %d", cfg.Constants.N)
	}
	if len(cfg.Constants.QCrank) != 1 || cfg.Constants.QCrank[0] != 0.25 {
		t.Errorf("expected q_crank [0.25], got %v", cfg.Constants.QCrank)
	}
	if cfg.Settings.DataDir != "out" {
		t.Errorf("expected data_dir out, got %s", cfg.Settings.DataDir)
	}
	if cfg.Constants.CV != DefaultHeatCapacity {
		t.Errorf("missing key should keep default, got c_v %f", cfg.Constants.CV)
	}
	if cfg.Settings.SeriesTerms != DefaultSeriesTerms {
		t.Errorf("missing key should keep default, got %d", cfg.Settings.SeriesTerms)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Constants.Voltage = 35

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Constants.Voltage != 35 {
		t.Errorf("expected voltage 35, got %f", loaded.Constants.Voltage)
	}
}

func TestPhysicalConstants(t *testing.T) {
	cfg := DefaultConfig()
	c := cfg.PhysicalConstants()

	if c.N != cfg.Constants.N || c.BodyTemp != cfg.Constants.TBody {
		t.Errorf("constants not copied: %+v", c)
	}

	c.ExplicitRatios[0] = 99
	if cfg.Constants.QExplicit[0] == 99 {
		t.Error("ratios should be copied, not shared")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"n too small", func(c *Config) { c.Constants.N = 2 }},
		{"zero duration", func(c *Config) { c.Constants.TA = 0 }},
		{"negative ratio", func(c *Config) { c.Constants.QImplicit = []float64{-1} }},
		{"no series terms", func(c *Config) { c.Settings.SeriesTerms = 0 }},
		{"no workers", func(c *Config) { c.Settings.Workers = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, heat.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("coarse")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Constants.N != 21 {
		t.Errorf("expected n 21, got %d", cfg.Constants.N)
	}
	if cfg.Constants.CV != DefaultHeatCapacity {
		t.Error("preset should start from defaults")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestFilePrefix(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.FilePrefix("crank"); got != "crank" {
		t.Errorf("expected crank, got %s", got)
	}
	cfg.Settings.ImplicitFile = "imp"
	if got := cfg.FilePrefix("implicit"); got != "imp" {
		t.Errorf("expected imp, got %s", got)
	}
}

func TestLoadOverKeepsPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("constants:\n  t_a: 0.05\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("coarse")
	cfg, err := LoadOver(path, base)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Constants.N != 21 {
		t.Errorf("preset N lost: got %d", cfg.Constants.N)
	}
	if cfg.Constants.TA != 0.05 {
		t.Errorf("t_a = %v, want 0.05", cfg.Constants.TA)
	}
}
