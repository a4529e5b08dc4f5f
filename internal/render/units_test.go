package render

import (
	"errors"
	"testing"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		code, unitTime float64
		unit           string
		want           string
	}{
		{1, 3.15576e16, "Gyr", "t = 1.000 Gyr"},
		{2, 3.15576e13, "Myr", "t = 2.000 Myr"},
		{0.5, 2, "s", "t = 1.000 s"},
		{2.5, 1e10, "code", "t = 2.500"},
		{3, 0, "s", "t = 3.000 s"},
	}
	for _, tt := range tests {
		got, err := FormatTime(tt.code, tt.unitTime, tt.unit)
		if err != nil {
			t.Errorf("FormatTime(%v, %v, %q) failed: %v", tt.code, tt.unitTime, tt.unit, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatTime(%v, %v, %q) = %q, want %q", tt.code, tt.unitTime, tt.unit, got, tt.want)
		}
	}

	if _, err := FormatTime(1, 1, "fortnight"); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("expected ErrUnknownUnit, got %v", err)
	}
}

func TestParseCorner(t *testing.T) {
	tests := map[string]Corner{
		"upper_right": UpperRight,
		"UPPER_LEFT":  UpperLeft,
		"lower_right": LowerRight,
		"lower_left":  LowerLeft,
	}
	for in, want := range tests {
		got, err := ParseCorner(in)
		if err != nil || got != want {
			t.Errorf("ParseCorner(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseCorner("center"); !errors.Is(err, ErrUnknownCorner) {
		t.Errorf("expected ErrUnknownCorner, got %v", err)
	}
}

func TestUnitSeconds(t *testing.T) {
	got, err := UnitSeconds("Gyr")
	if err != nil || got != 3.15576e16 {
		t.Errorf("UnitSeconds(Gyr) = %v, %v", got, err)
	}
	if _, err := UnitSeconds(CodeTime); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("expected ErrUnknownUnit for code time, got %v", err)
	}
}
