// Package colormap maps scalar values to colors using perceptually uniform
// lookup tables.
package colormap

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// TableSize is the number of entries in every lookup table.
const TableSize = 256

var (
	ErrUnknownColormap = errors.New("colormap: unknown colormap")
	ErrInvalidNorm     = errors.New("colormap: invalid normalization")
)

// anchors are evenly spaced samples of each map, interpolated in CIE-Lab.
var anchors = map[string][]string{
	"inferno": {
		"#000004", "#160b39", "#420a68", "#6a176e", "#932667", "#bc3754",
		"#dd513a", "#f37819", "#fca50a", "#f6d746", "#fcffa4",
	},
	"viridis": {
		"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
		"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
	},
	"magma": {
		"#000004", "#140e36", "#3b0f70", "#641a80", "#8c2981", "#b73779",
		"#de4968", "#f7705c", "#fe9f6d", "#fecf92", "#fcfdbf",
	},
	"plasma": {
		"#0d0887", "#41049d", "#6a00a8", "#8f0da4", "#b12a90", "#cc4778",
		"#e16462", "#f2844b", "#fca636", "#fcce25", "#f0f921",
	},
	"gray": {"#000000", "#ffffff"},
}

type Colormap struct {
	Name       string
	Background color.RGBA
	table      [TableSize]color.RGBA
}

// Get builds the named colormap. A "_r" suffix reverses it.
func Get(name string) (*Colormap, error) {
	base := strings.ToLower(name)
	reversed := strings.HasSuffix(base, "_r")
	base = strings.TrimSuffix(base, "_r")

	hexes, ok := anchors[base]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownColormap, name, Names())
	}

	stops := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("colormap %s: %w", base, err)
		}
		stops[i] = c
	}

	cm := &Colormap{Name: name, Background: color.RGBA{255, 255, 255, 255}}
	segments := float64(len(stops) - 1)
	for i := 0; i < TableSize; i++ {
		t := float64(i) / float64(TableSize-1)
		if reversed {
			t = 1 - t
		}
		pos := t * segments
		seg := int(pos)
		if seg >= len(stops)-1 {
			seg = len(stops) - 2
		}
		c := stops[seg].BlendLab(stops[seg+1], pos-float64(seg)).Clamped()
		r, g, b := c.RGB255()
		cm.table[i] = color.RGBA{r, g, b, 255}
	}
	return cm, nil
}

func Names() []string {
	names := make([]string, 0, len(anchors))
	for name := range anchors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// At returns the color at t in [0, 1]; values outside are clamped.
func (cm *Colormap) At(t float64) color.RGBA {
	if math.IsNaN(t) {
		return cm.Background
	}
	if t <= 0 {
		return cm.table[0]
	}
	if t >= 1 {
		return cm.table[TableSize-1]
	}
	return cm.table[int(t*float64(TableSize-1)+0.5)]
}

// Map normalizes v with n and looks it up.
func (cm *Colormap) Map(v float64, n Norm) color.RGBA {
	return cm.At(n.Apply(v))
}

// Norm maps [Min, Max] onto [0, 1], linearly or in log10.
type Norm struct {
	Min float64
	Max float64
	Log bool
}

func (n Norm) Validate() error {
	if math.IsNaN(n.Min) || math.IsNaN(n.Max) || n.Min >= n.Max {
		return fmt.Errorf("%w: limits [%g, %g]", ErrInvalidNorm, n.Min, n.Max)
	}
	if n.Log && n.Min <= 0 {
		return fmt.Errorf("%w: log scale needs positive limits, got [%g, %g]", ErrInvalidNorm, n.Min, n.Max)
	}
	return nil
}

// Apply returns NaN for NaN input and for non-positive input on a log scale.
func (n Norm) Apply(v float64) float64 {
	if math.IsNaN(v) {
		return math.NaN()
	}
	lo, hi := n.Min, n.Max
	if n.Log {
		if v <= 0 {
			return math.NaN()
		}
		v, lo, hi = math.Log10(v), math.Log10(lo), math.Log10(hi)
	}
	if hi == lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

// Inverse maps t in [0, 1] back to a data value.
func (n Norm) Inverse(t float64) float64 {
	if n.Log {
		lo, hi := math.Log10(n.Min), math.Log10(n.Max)
		return math.Pow(10, lo+t*(hi-lo))
	}
	return n.Min + t*(n.Max-n.Min)
}
