package report

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/phaseslice/internal/storage"
)

func records() []storage.SliceRecord {
	return []storage.SliceRecord{
		{Index: 0, Time: 0, Min: -1, Max: 1, Mean: 0.0},
		{Index: 1, Time: 3.15576e16, Min: -0.8, Max: 0.9, Mean: 0.1},
		{Index: 2, Time: 6.31152e16, Min: -0.5, Max: 1, Mean: 0.3},
	}
}

func TestTimeline(t *testing.T) {
	out := Timeline(records(), "Phase")
	if !strings.Contains(out, "mean Phase, snapshots 0-2") {
		t.Errorf("missing caption in:\n%s", out)
	}
}

func TestProfile_DropsNaN(t *testing.T) {
	out := Profile([]float64{math.NaN(), 1, 2, 3, math.NaN()}, "row 4")
	if !strings.Contains(out, "row 4") {
		t.Errorf("missing caption in:\n%s", out)
	}
	if got := Profile([]float64{math.NaN()}, "empty"); got != "empty: no data" {
		t.Errorf("got %q", got)
	}
}

func TestTimelineChart(t *testing.T) {
	var buf bytes.Buffer
	if err := TimelineChart(&buf, records(), "Phase", "Gyr", 3.15576e16); err != nil {
		t.Fatalf("TimelineChart failed: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 400 {
		t.Errorf("unexpected size %v", b)
	}
}

func TestTimelineChart_TooFew(t *testing.T) {
	var buf bytes.Buffer
	err := TimelineChart(&buf, records()[:1], "Phase", "Gyr", 1)
	if !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
}

func TestSaveTimelineChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "timeline.png")
	if err := SaveTimelineChart(path, records(), "Phase", "Gyr", 3.15576e16); err != nil {
		t.Fatalf("SaveTimelineChart failed: %v", err)
	}
}
