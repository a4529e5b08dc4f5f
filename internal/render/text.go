package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face = basicfont.Face7x13

// textSize returns the pixel size of s drawn at an integer magnification.
func textSize(s string, scale int) (int, int) {
	w := font.MeasureString(face, s).Ceil()
	return w * scale, face.Height * scale
}

// drawText draws s with its top-left corner at (x, y). The bitmap font is
// rendered once at its native size and magnified with nearest-neighbour
// sampling so glyphs stay sharp at high DPI.
func drawText(dst *image.RGBA, x, y int, s string, col color.Color, scale int) {
	if s == "" {
		return
	}
	if scale < 1 {
		scale = 1
	}
	w, h := textSize(s, 1)
	glyphs := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(0), Y: fixed.I(face.Ascent)},
	}
	d.DrawString(s)

	target := image.Rect(x, y, x+w*scale, y+h*scale)
	draw.NearestNeighbor.Scale(dst, target, glyphs, glyphs.Bounds(), draw.Over, nil)
}

// drawTextBox draws s on a filled box with pad pixels of margin.
func drawTextBox(dst *image.RGBA, x, y int, s string, fg, bg color.Color, scale, pad int) image.Rectangle {
	w, h := textSize(s, scale)
	box := image.Rect(x, y, x+w+2*pad, y+h+2*pad)
	draw.Draw(dst, box, image.NewUniform(bg), image.Point{}, draw.Over)
	drawText(dst, x+pad, y+pad, s, fg, scale)
	return box
}

func fillRect(dst *image.RGBA, r image.Rectangle, col color.Color) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(col), image.Point{}, draw.Over)
}

// strokeRect outlines r with lines of width lw, clipped to clip.
func strokeRect(dst *image.RGBA, r image.Rectangle, lw int, col color.Color, clip image.Rectangle) {
	if lw < 1 {
		lw = 1
	}
	src := image.NewUniform(col)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+lw),
		image.Rect(r.Min.X, r.Max.Y-lw, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y+lw, r.Min.X+lw, r.Max.Y-lw),
		image.Rect(r.Max.X-lw, r.Min.Y+lw, r.Max.X, r.Max.Y-lw),
	}
	for _, e := range edges {
		e = e.Intersect(clip)
		if e.Empty() {
			continue
		}
		draw.Draw(dst, e, src, image.Point{}, draw.Over)
	}
}
