// Package report draws terminal and PNG charts of stored slice statistics.
package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/phaseslice/internal/storage"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrTooFewPoints = errors.New("report: need at least two slices to chart")

const (
	graphHeight = 10
	graphWidth  = 80
)

// Timeline plots the mean of every slice against its position in the run.
func Timeline(records []storage.SliceRecord, field string) string {
	means := make([]float64, len(records))
	for i, r := range records {
		means[i] = r.Mean
	}
	first, last := 0, 0
	if len(records) > 0 {
		first, last = records[0].Index, records[len(records)-1].Index
	}
	return asciigraph.Plot(means,
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Caption(fmt.Sprintf("mean %s, snapshots %d-%d", field, first, last)),
	)
}

// Profile plots values along one row of a slice. Uncovered pixels are
// dropped.
func Profile(values []float64, caption string) string {
	data := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			data = append(data, v)
		}
	}
	if len(data) == 0 {
		return caption + ": no data"
	}
	return asciigraph.Plot(data,
		asciigraph.Height(graphHeight),
		asciigraph.Width(graphWidth),
		asciigraph.Caption(caption),
	)
}

// TimelineChart writes a PNG chart of min, mean and max against time in
// the given unit.
func TimelineChart(w io.Writer, records []storage.SliceRecord, field, unit string, unitSeconds float64) error {
	if len(records) < 2 {
		return ErrTooFewPoints
	}
	if unitSeconds <= 0 {
		unitSeconds = 1
	}

	xs := make([]float64, len(records))
	mins := make([]float64, len(records))
	means := make([]float64, len(records))
	maxs := make([]float64, len(records))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, r := range records {
		xs[i] = r.Time / unitSeconds
		mins[i], means[i], maxs[i] = r.Min, r.Mean, r.Max
		lo = math.Min(lo, r.Min)
		hi = math.Max(hi, r.Max)
	}
	if xs[0] == xs[len(xs)-1] {
		for i := range xs {
			xs[i] = float64(records[i].Index)
		}
		unit = "snapshot"
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || math.IsNaN(lo) || math.IsNaN(hi) {
		return fmt.Errorf("report: %s has no finite values", field)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		XAxis: chart.XAxis{
			Name:  fmt.Sprintf("t (%s)", unit),
			Style: chart.Style{FontSize: 10.0},
		},
		YAxis: chart.YAxis{
			Name:  field,
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "min",
				XValues: xs,
				YValues: mins,
				Style:   chart.Style{StrokeColor: drawing.Color{R: 66, G: 10, B: 104, A: 255}, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "mean",
				XValues: xs,
				YValues: means,
				Style:   chart.Style{StrokeColor: drawing.Color{R: 188, G: 55, B: 84, A: 255}, StrokeWidth: 3.0},
			},
			chart.ContinuousSeries{
				Name:    "max",
				XValues: xs,
				YValues: maxs,
				Style:   chart.Style{StrokeColor: drawing.Color{R: 249, G: 142, B: 9, A: 255}, StrokeWidth: 2.0},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

// SaveTimelineChart writes the timeline chart to path.
func SaveTimelineChart(path string, records []storage.SliceRecord, field, unit string, unitSeconds float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := TimelineChart(f, records, field, unit, unitSeconds); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
