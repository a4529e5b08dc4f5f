package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Prefix != "../" {
		t.Errorf("expected prefix ../, got %s", cfg.Prefix)
	}
	if cfg.Step != 1 {
		t.Errorf("expected step 1, got %d", cfg.Step)
	}
	r := cfg.Render
	if r.Field != "Phase" || r.Axis != "z" || r.Center != "c" {
		t.Errorf("unexpected slice defaults: %+v", r)
	}
	if len(r.ZLim) != 2 || r.ZLim[0] != -1 || r.ZLim[1] != 1 {
		t.Errorf("expected zlim [-1 1], got %v", r.ZLim)
	}
	if r.Colormap != "inferno" || r.DPI != 150 || r.TimeUnit != "Gyr" {
		t.Errorf("unexpected render defaults: %+v", r)
	}
	if !r.AnnotateGrids || !r.Timestamp {
		t.Error("grids and timestamp should be on by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phaseslice.yaml")

	cfg := DefaultConfig()
	cfg.Start, cfg.End, cfg.Step = 3, 30, 3
	cfg.Render.Colormap = "magma"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Start != 3 || loaded.End != 30 || loaded.Step != 3 {
		t.Errorf("range not preserved: %+v", loaded)
	}
	if loaded.Render.Colormap != "magma" {
		t.Errorf("expected magma, got %s", loaded.Render.Colormap)
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("end: 12\nrender:\n  dpi: 300\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.End != 12 || cfg.Render.DPI != 300 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Render.Field != "Phase" || cfg.Prefix != "../" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero step", func(c *Config) { c.Step = 0 }},
		{"start after end", func(c *Config) { c.Start = 5; c.End = 1 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"bad axis", func(c *Config) { c.Render.Axis = "w" }},
		{"bad center", func(c *Config) { c.Render.Center = "1,2" }},
		{"bad colormap", func(c *Config) { c.Render.Colormap = "jet" }},
		{"one zlim", func(c *Config) { c.Render.ZLim = []float64{1} }},
		{"inverted zlim", func(c *Config) { c.Render.ZLim = []float64{1, -1} }},
		{"log with negative zlim", func(c *Config) { c.Render.Log = true }},
		{"zero dpi", func(c *Config) { c.Render.DPI = 0 }},
		{"bad unit", func(c *Config) { c.Render.TimeUnit = "week" }},
		{"bad corner", func(c *Config) { c.Render.TimestampCorner = "middle" }},
		{"empty field", func(c *Config) { c.Render.Field = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestValidate_AutoLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Render.ZLim = nil
	cfg.Render.Log = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("auto limits should be valid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("density")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	if p.Field != "Dens" || !p.Log {
		t.Errorf("unexpected density preset: %+v", p)
	}

	phase := GetPreset("phase")
	phase.ZLim[0] = -5
	if Presets["phase"].ZLim[0] != -1 {
		t.Error("GetPreset should return an independent copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	for _, name := range ListPresets() {
		r := GetPreset(name)
		if err := r.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
