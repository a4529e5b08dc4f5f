package gamer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/san-kum/phaseslice/internal/amr"
	"github.com/san-kum/phaseslice/internal/amr/amrtest"
	"github.com/san-kum/phaseslice/internal/logging"
)

func flatten(s *amr.Snapshot) Raw {
	var raw Raw
	for _, p := range s.Patches {
		raw.Field = append(raw.Field, p.Data...)
		for d := 0; d < 3; d++ {
			raw.Corner = append(raw.Corner, float64(p.Corner[d]))
		}
		raw.Father = append(raw.Father, float64(p.Father))
	}
	return raw
}

func refinedSnapshot() *amr.Snapshot {
	fn := func(x, y, z float64) float64 { return x + 2*y + 3*z }
	s := amrtest.Uniform(2, 4, 8, 1.0, fn)
	sons := amrtest.Refine(s, 5, fn)
	amrtest.Refine(s, sons[0], fn)
	return s
}

func TestAssemble_RoundTrip(t *testing.T) {
	want := refinedSnapshot()
	raw := flatten(want)
	raw.Time = 0.25
	raw.UnitTime = 4
	raw.BoxSize = []float64{1, 1, 1}

	got, err := Assemble("/data/run/Data_000007", "Phase", raw)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	if got.Name != "Data_000007" {
		t.Errorf("name = %q", got.Name)
	}
	if got.PatchSize != 4 || got.RootScale != 8 {
		t.Errorf("patch size %d root scale %d", got.PatchSize, got.RootScale)
	}
	if got.TimeSeconds() != 1 {
		t.Errorf("TimeSeconds() = %v", got.TimeSeconds())
	}
	if len(got.Patches) != len(want.Patches) {
		t.Fatalf("expected %d patches, got %d", len(want.Patches), len(got.Patches))
	}
	for i := range want.Patches {
		if got.Patches[i].Level != want.Patches[i].Level {
			t.Errorf("patch %d level %d, want %d", i, got.Patches[i].Level, want.Patches[i].Level)
		}
		if got.Patches[i].Corner != want.Patches[i].Corner {
			t.Errorf("patch %d corner %v, want %v", i, got.Patches[i].Corner, want.Patches[i].Corner)
		}
	}
	if got.MaxLevel() != 2 {
		t.Errorf("MaxLevel() = %d", got.MaxLevel())
	}
}

func TestAssemble_Defaults(t *testing.T) {
	raw := flatten(refinedSnapshot())

	got, err := Assemble("Data_000000", "Phase", raw)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if got.UnitTime != 1 || got.Time != 0 {
		t.Errorf("time %v unit %v", got.Time, got.UnitTime)
	}
	if got.BoxSize != [3]float64{64, 64, 64} {
		t.Errorf("BoxSize = %v", got.BoxSize)
	}
}

func TestAssemble_SingleRootPatch(t *testing.T) {
	fn := func(x, y, z float64) float64 { return 1 }
	s := amrtest.Uniform(1, 4, 2, 1.0, fn)
	amrtest.Refine(s, 0, fn)

	got, err := Assemble("Data_000000", "Phase", flatten(s))
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	if got.RootScale != 2 {
		t.Errorf("RootScale = %d, want 2", got.RootScale)
	}
}

func TestAssemble_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Raw)
	}{
		{"no patches", func(r *Raw) { *r = Raw{} }},
		{"short corners", func(r *Raw) { r.Corner = r.Corner[:5] }},
		{"ragged field", func(r *Raw) { r.Field = r.Field[:len(r.Field)-1] }},
		{"father out of range", func(r *Raw) { r.Father[9] = 1000 }},
		{"father cycle", func(r *Raw) { r.Father[0], r.Father[1] = 1, 0 }},
		{"bad box", func(r *Raw) { r.BoxSize = []float64{1, 2} }},
		{"corner off grid", func(r *Raw) { r.Corner[3] = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := flatten(refinedSnapshot())
			tt.mutate(&raw)
			if _, err := Assemble("Data_000000", "Phase", raw); !errors.Is(err, ErrBadLayout) {
				t.Errorf("expected ErrBadLayout, got %v", err)
			}
		})
	}
}

func TestAssemble_NonCubicPatch(t *testing.T) {
	raw := Raw{
		Field:  make([]float64, 10),
		Corner: []float64{0, 0, 0},
		Father: []float64{-1},
	}
	if _, err := Assemble("x", "Phase", raw); !errors.Is(err, ErrBadLayout) {
		t.Errorf("expected ErrBadLayout, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	l := NewLoader(logging.Discard())
	path := filepath.Join(t.TempDir(), "Data_000000")
	if _, err := l.Load(context.Background(), path, "Phase"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoad_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewLoader(logging.Discard()).Load(ctx, "Data_000000", "Phase"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"GridData/Phase":   "/GridData/Phase",
		"/Tree/Corner":     "/Tree/Corner",
		"/GridData/Phase/": "/GridData/Phase",
	}
	for in, want := range tests {
		if got := normalize(in); got != want {
			t.Errorf("normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
