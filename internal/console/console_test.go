package console

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"
)

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	Banner(&buf, []string{"phaseslice", "-s", "0", "-e", "10"})
	out := stripANSI(buf.String())

	if !strings.Contains(out, "Command-line arguments:") {
		t.Error("missing heading")
	}
	if !strings.Contains(out, "phaseslice -s 0 -e 10") {
		t.Errorf("missing joined args in %q", out)
	}
	if strings.Count(out, strings.Repeat("-", ruleWidth)) != 2 {
		t.Errorf("expected two rules in %q", out)
	}
}

func TestScenarioHeader(t *testing.T) {
	var buf bytes.Buffer
	ScenarioHeader(&buf, "lss", "phase and density slices", 3)
	out := stripANSI(buf.String())

	for _, want := range []string{"scenario: lss", "(3 steps)", "phase and density slices", "╭", "╯"} {
		if !strings.Contains(out, want) {
			t.Errorf("header missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	ScenarioHeader(&buf, "bare", "", 1)
	if strings.Contains(buf.String(), "╭") {
		t.Errorf("empty description should not draw a panel:\n%s", buf.String())
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		runes  int
	}{
		{"empty", nil, 5, 5},
		{"fits", []float64{1, 2, 3}, 10, 3},
		{"sampled", make([]float64, 100), 10, 10},
		{"nan", []float64{1, math.NaN(), 2}, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sparkline(tt.values, tt.width)
			n := 0
			for _, r := range got {
				if r == ' ' || r == '─' || (r >= '▁' && r <= '█') {
					n++
				}
			}
			if n != tt.runes {
				t.Errorf("got %d cells in %q, want %d", n, got, tt.runes)
			}
		})
	}
}

func TestProgressBar_Clamps(t *testing.T) {
	for _, frac := range []float64{-1, 0, 0.5, 1, 2} {
		bar := ProgressBar(frac, 10)
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != 10 {
			t.Errorf("frac %v: bar has %d cells", frac, got)
		}
	}
}

func TestGradientText(t *testing.T) {
	if got := GradientText("abc", "nothex", "#ffffff"); got != "abc" {
		t.Errorf("invalid color should leave text unstyled, got %q", got)
	}
	if !strings.Contains(stripANSI(GradientText("phase", "#00ffff", "#ff00ff")), "phase") {
		t.Error("gradient lost text")
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	Summary{RunID: "run_1", Rendered: 3, Failed: 1, Elapsed: 1500 * time.Millisecond, OutputDir: "out", Means: []float64{0, 1}}.Write(&buf)
	out := buf.String()
	for _, want := range []string{"1 failed", "rendered:", "1.5s", "out", "run_1", "mean:"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	esc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			esc = true
		case esc && r == 'm':
			esc = false
		case !esc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
