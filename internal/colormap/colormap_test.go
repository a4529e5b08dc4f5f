package colormap

import (
	"errors"
	"image/color"
	"math"
	"testing"
)

func TestGet_Endpoints(t *testing.T) {
	cm, err := Get("inferno")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got := cm.At(0); got != (color.RGBA{0, 0, 4, 255}) {
		t.Errorf("inferno(0) = %v", got)
	}
	if got := cm.At(1); got != (color.RGBA{0xfc, 0xff, 0xa4, 255}) {
		t.Errorf("inferno(1) = %v", got)
	}
}

func TestGet_Reversed(t *testing.T) {
	cm, err := Get("gray_r")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got := cm.At(0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("gray_r(0) = %v", got)
	}
	if got := cm.At(1); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("gray_r(1) = %v", got)
	}
}

func TestGet_Unknown(t *testing.T) {
	if _, err := Get("jet"); !errors.Is(err, ErrUnknownColormap) {
		t.Errorf("expected ErrUnknownColormap, got %v", err)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(anchors) {
		t.Fatalf("expected %d names, got %d", len(anchors), len(names))
	}
	for _, name := range names {
		if _, err := Get(name); err != nil {
			t.Errorf("Get(%q) failed: %v", name, err)
		}
	}
}

func TestAt_ClampsAndNaN(t *testing.T) {
	cm, _ := Get("viridis")
	if cm.At(-3) != cm.At(0) || cm.At(7) != cm.At(1) {
		t.Error("out-of-range values should clamp")
	}
	if cm.At(math.NaN()) != cm.Background {
		t.Error("NaN should map to the background")
	}
}

func TestGrayIsMonotonic(t *testing.T) {
	cm, _ := Get("gray")
	prev := -1
	for i := 0; i < TableSize; i++ {
		c := cm.At(float64(i) / float64(TableSize-1))
		if int(c.R) < prev {
			t.Fatalf("gray not monotonic at %d", i)
		}
		prev = int(c.R)
	}
}

func TestNorm(t *testing.T) {
	lin := Norm{Min: -1, Max: 1}
	tests := []struct {
		v, want float64
	}{
		{-1, 0},
		{0, 0.5},
		{1, 1},
		{3, 2},
	}
	for _, tt := range tests {
		if got := lin.Apply(tt.v); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Apply(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
	if got := lin.Inverse(0.25); got != -0.5 {
		t.Errorf("Inverse(0.25) = %v", got)
	}

	log := Norm{Min: 1, Max: 100, Log: true}
	if got := log.Apply(10); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("log Apply(10) = %v", got)
	}
	if !math.IsNaN(log.Apply(-1)) {
		t.Error("non-positive value on log scale should be NaN")
	}
	if got := log.Inverse(0.5); math.Abs(got-10) > 1e-9 {
		t.Errorf("log Inverse(0.5) = %v", got)
	}
}

func TestNormValidate(t *testing.T) {
	tests := []struct {
		name string
		n    Norm
		ok   bool
	}{
		{"linear", Norm{Min: -1, Max: 1}, true},
		{"inverted", Norm{Min: 1, Max: -1}, false},
		{"equal", Norm{Min: 1, Max: 1}, false},
		{"log negative", Norm{Min: -1, Max: 1, Log: true}, false},
		{"log positive", Norm{Min: 1e-3, Max: 1, Log: true}, true},
		{"nan", Norm{Min: math.NaN(), Max: 1}, false},
	}
	for _, tt := range tests {
		err := tt.n.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidNorm) {
			t.Errorf("%s: expected ErrInvalidNorm, got %v", tt.name, err)
		}
	}
}
