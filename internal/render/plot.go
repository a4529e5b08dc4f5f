// Package render draws slice plots of AMR snapshots to PNG images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/san-kum/phaseslice/internal/amr"
	"github.com/san-kum/phaseslice/internal/colormap"
)

const (
	DefaultResolution = 800
	DefaultFigureSize = 5.0
	DefaultColormap   = "inferno"

	// baseDPI is the resolution the layout constants below are expressed in.
	baseDPI = 100.0
)

type Options struct {
	// Resolution is the buffer size along the longer image axis.
	Resolution int
	// FigureSize is the longer panel side in inches.
	FigureSize float64
}

type timestamp struct {
	unit   string
	corner Corner
}

// SlicePlot is a configurable slice of one field through a snapshot.
type SlicePlot struct {
	snap  *amr.Snapshot
	slice *amr.Slice
	field string

	zlim       *[2]float64
	log        bool
	cmap       *colormap.Colormap
	stamp      *timestamp
	grids      bool
	figureSize float64
}

func NewSlicePlot(snap *amr.Snapshot, axis amr.Axis, field string, center amr.Center, opts Options) (*SlicePlot, error) {
	if snap.Field != field {
		return nil, fmt.Errorf("%w: %q (snapshot has %q)", ErrFieldNotLoaded, field, snap.Field)
	}
	if opts.Resolution <= 0 {
		opts.Resolution = DefaultResolution
	}
	if opts.FigureSize <= 0 {
		opts.FigureSize = DefaultFigureSize
	}

	pos, err := center.Resolve(snap)
	if err != nil {
		return nil, err
	}
	sl, err := amr.Take(snap, axis, pos, opts.Resolution)
	if err != nil {
		return nil, err
	}
	cm, err := colormap.Get(DefaultColormap)
	if err != nil {
		return nil, err
	}

	return &SlicePlot{
		snap:       snap,
		slice:      sl,
		field:      field,
		cmap:       cm,
		figureSize: opts.FigureSize,
	}, nil
}

func (p *SlicePlot) checkField(field string) error {
	if field != p.field {
		return fmt.Errorf("%w: %q (plot shows %q)", ErrFieldNotLoaded, field, p.field)
	}
	return nil
}

func (p *SlicePlot) SetZLim(field string, lo, hi float64) error {
	if err := p.checkField(field); err != nil {
		return err
	}
	n := colormap.Norm{Min: lo, Max: hi, Log: p.log}
	if err := n.Validate(); err != nil {
		return err
	}
	p.zlim = &[2]float64{lo, hi}
	return nil
}

func (p *SlicePlot) SetCmap(field, name string) error {
	if err := p.checkField(field); err != nil {
		return err
	}
	cm, err := colormap.Get(name)
	if err != nil {
		return err
	}
	p.cmap = cm
	return nil
}

func (p *SlicePlot) SetLog(field string, log bool) error {
	if err := p.checkField(field); err != nil {
		return err
	}
	p.log = log
	return nil
}

func (p *SlicePlot) AnnotateTimestamp(unit string, corner string) error {
	if !ValidTimeUnit(unit) {
		return fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	c, err := ParseCorner(corner)
	if err != nil {
		return err
	}
	p.stamp = &timestamp{unit: unit, corner: c}
	return nil
}

func (p *SlicePlot) AnnotateGrids() {
	p.grids = true
}

func (p *SlicePlot) Slice() *amr.Slice {
	return p.slice
}

// Filename is the default output name, <snapshot>_Slice_<axis>_<field>.png.
func (p *SlicePlot) Filename() string {
	return fmt.Sprintf("%s_Slice_%s_%s.png", p.snap.Name, p.slice.Axis, p.field)
}

// Norm returns the normalization in effect: explicit limits or the slice range.
func (p *SlicePlot) Norm() colormap.Norm {
	if p.zlim != nil {
		return colormap.Norm{Min: p.zlim[0], Max: p.zlim[1], Log: p.log}
	}
	st := p.slice.Stats()
	n := colormap.Norm{Min: st.Min, Max: st.Max, Log: p.log}
	if p.log {
		n.Min = positiveMin(p.slice.Values)
	}
	if math.IsNaN(n.Min) || math.IsNaN(n.Max) || (p.log && n.Max <= 0) {
		n.Min, n.Max = 0, 1
		if p.log {
			n.Min = 1e-10
		}
	}
	if n.Min == n.Max {
		n.Min, n.Max = n.Min-0.5, n.Max+0.5
		if p.log {
			n.Min, n.Max = n.Max/10, n.Max*10
		}
	}
	return n
}

// Save renders the plot at dpi and writes it into dir under Filename.
func (p *SlicePlot) Save(dir string, dpi int) (string, error) {
	img, err := p.Render(dpi)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, p.Filename())
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}

type layout struct {
	scale int
	lw    int
	panel image.Rectangle
	cbar  image.Rectangle
	size  image.Point
}

func (p *SlicePlot) layout(dpi int) layout {
	f := float64(dpi) / baseDPI
	px := func(v float64) int { return int(math.Round(v * f)) }

	long := int(math.Round(p.figureSize * float64(dpi)))
	pw, ph := long, long
	if p.slice.Width >= p.slice.Height {
		ph = int(math.Max(1, math.Round(float64(long)*float64(p.slice.Height)/float64(p.slice.Width))))
	} else {
		pw = int(math.Max(1, math.Round(float64(long)*float64(p.slice.Width)/float64(p.slice.Height))))
	}

	l := layout{
		scale: int(math.Max(1, math.Round(f))),
		lw:    int(math.Max(1, math.Round(f))),
	}
	left, top := px(80), px(40)
	l.panel = image.Rect(left, top, left+pw, top+ph)
	cx := l.panel.Max.X + px(20)
	l.cbar = image.Rect(cx, top, cx+px(25), top+ph)
	l.size = image.Pt(l.cbar.Max.X+px(90), l.panel.Max.Y+px(60))
	return l
}

// Render draws the plot into a new image.
func (p *SlicePlot) Render(dpi int) (*image.RGBA, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDPI, dpi)
	}
	norm := p.Norm()
	if err := norm.Validate(); err != nil {
		return nil, err
	}

	l := p.layout(dpi)
	img := image.NewRGBA(image.Rectangle{Max: l.size})
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	p.drawField(img, l, norm)
	if p.grids {
		p.drawGrids(img, l)
	}
	strokeRect(img, l.panel.Inset(-l.lw), l.lw, color.Black, img.Bounds())
	p.drawAxes(img, l)
	p.drawColorbar(img, l, norm)
	if p.stamp != nil {
		if err := p.drawTimestamp(img, l); err != nil {
			return nil, err
		}
	}
	return img, nil
}

func (p *SlicePlot) drawField(img *image.RGBA, l layout, norm colormap.Norm) {
	sl := p.slice
	frb := image.NewRGBA(image.Rect(0, 0, sl.Width, sl.Height))
	for r := 0; r < sl.Height; r++ {
		for c := 0; c < sl.Width; c++ {
			frb.SetRGBA(c, r, p.cmap.Map(sl.At(c, r), norm))
		}
	}
	draw.NearestNeighbor.Scale(img, l.panel, frb, frb.Bounds(), draw.Src, nil)
}

func (p *SlicePlot) drawGrids(img *image.RGBA, l layout) {
	sl := p.slice
	sx := float64(l.panel.Dx()) / float64(sl.Width)
	sy := float64(l.panel.Dy()) / float64(sl.Height)
	line := color.RGBA{0, 0, 0, 150}
	for _, g := range sl.Grids {
		r := image.Rect(
			l.panel.Min.X+int(math.Round(g.X0*sx)),
			l.panel.Min.Y+int(math.Round(g.Y0*sy)),
			l.panel.Min.X+int(math.Round(g.X1*sx)),
			l.panel.Min.Y+int(math.Round(g.Y1*sy)),
		)
		strokeRect(img, r, l.lw, line, l.panel)
	}
}

func (p *SlicePlot) drawAxes(img *image.RGBA, l layout) {
	sl := p.slice
	ha, va := sl.Axis.ImageAxes()
	names := [3]string{"x", "y", "z"}
	gap := 4 * l.scale
	tick := 5 * l.scale

	for i := 0; i <= 2; i++ {
		t := float64(i) / 2

		x := l.panel.Min.X + int(math.Round(t*float64(l.panel.Dx()-1)))
		fillRect(img, image.Rect(x, l.panel.Max.Y, x+l.lw, l.panel.Max.Y+tick), color.Black)
		label := fmt.Sprintf("%.3g", sl.XMin+t*(sl.XMax-sl.XMin))
		w, _ := textSize(label, l.scale)
		drawText(img, x-w/2, l.panel.Max.Y+tick+gap, label, color.Black, l.scale)

		y := l.panel.Max.Y - 1 - int(math.Round(t*float64(l.panel.Dy()-1)))
		fillRect(img, image.Rect(l.panel.Min.X-tick, y, l.panel.Min.X, y+l.lw), color.Black)
		label = fmt.Sprintf("%.3g", sl.YMin+t*(sl.YMax-sl.YMin))
		w, h := textSize(label, l.scale)
		drawText(img, l.panel.Min.X-tick-gap-w, y-h/2, label, color.Black, l.scale)
	}

	_, h := textSize("x", l.scale)
	xl := names[ha] + " (code length)"
	w, _ := textSize(xl, l.scale)
	drawText(img, l.panel.Min.X+(l.panel.Dx()-w)/2, l.panel.Max.Y+tick+2*gap+h, xl, color.Black, l.scale)

	yl := names[va]
	drawText(img, gap, l.panel.Min.Y+(l.panel.Dy()-h)/2, yl, color.Black, l.scale)

	title := fmt.Sprintf("%s = %.3g", names[sl.Axis], sl.Coord)
	w, _ = textSize(title, l.scale)
	drawText(img, l.panel.Min.X+(l.panel.Dx()-w)/2, l.panel.Min.Y-h-2*gap, title, color.Black, l.scale)
}

func (p *SlicePlot) drawColorbar(img *image.RGBA, l layout, norm colormap.Norm) {
	cb := l.cbar
	hb := cb.Dy()
	for i := 0; i < hb; i++ {
		t := 1 - (float64(i)+0.5)/float64(hb)
		fillRect(img, image.Rect(cb.Min.X, cb.Min.Y+i, cb.Max.X, cb.Min.Y+i+1), p.cmap.At(t))
	}
	strokeRect(img, cb.Inset(-l.lw), l.lw, color.Black, img.Bounds())

	gap := 4 * l.scale
	tick := 4 * l.scale
	const ticks = 4
	for i := 0; i <= ticks; i++ {
		t := float64(i) / ticks
		y := cb.Max.Y - 1 - int(math.Round(t*float64(hb-1)))
		fillRect(img, image.Rect(cb.Max.X, y, cb.Max.X+tick, y+l.lw), color.Black)
		label := fmt.Sprintf("%.3g", norm.Inverse(t))
		_, h := textSize(label, l.scale)
		drawText(img, cb.Max.X+tick+gap, y-h/2, label, color.Black, l.scale)
	}

	title := p.field
	if p.log {
		title = "log " + title
	}
	_, h := textSize(title, l.scale)
	drawText(img, cb.Min.X, cb.Min.Y-h-2*gap, title, color.Black, l.scale)
}

func (p *SlicePlot) drawTimestamp(img *image.RGBA, l layout) error {
	text, err := FormatTime(p.snap.Time, p.snap.UnitTime, p.stamp.unit)
	if err != nil {
		return err
	}
	pad := 3 * l.scale
	margin := 8 * l.scale
	w, h := textSize(text, l.scale)
	w, h = w+2*pad, h+2*pad

	var x, y int
	switch p.stamp.corner {
	case UpperLeft:
		x, y = l.panel.Min.X+margin, l.panel.Min.Y+margin
	case LowerRight:
		x, y = l.panel.Max.X-margin-w, l.panel.Max.Y-margin-h
	case LowerLeft:
		x, y = l.panel.Min.X+margin, l.panel.Max.Y-margin-h
	default:
		x, y = l.panel.Max.X-margin-w, l.panel.Min.Y+margin
	}
	drawTextBox(img, x, y, text, color.White, color.RGBA{0, 0, 0, 128}, l.scale, pad)
	return nil
}

func positiveMin(values []float64) float64 {
	m := math.NaN()
	for _, v := range values {
		if v > 0 && (math.IsNaN(m) || v < m) {
			m = v
		}
	}
	return m
}
