package amr

import (
	"fmt"
	"math"
)

// GridRect is a patch outline in buffer pixel coordinates, Y growing downwards.
type GridRect struct {
	Level  int
	X0, Y0 float64
	X1, Y1 float64
}

// Slice is a fixed-resolution buffer of one field on an axis-aligned plane.
// Values are row-major with row 0 at the top (largest vertical coordinate).
type Slice struct {
	Axis   Axis
	Field  string
	Coord  float64
	Center [3]float64

	// XMin..YMax bound the buffer in code units along the image axes.
	XMin, XMax float64
	YMin, YMax float64

	Width  int
	Height int
	Values []float64
	Grids  []GridRect
}

type Stats struct {
	Min    float64
	Max    float64
	Mean   float64
	Std    float64
	Pixels int
}

// Take samples the leaf patches of s on the plane through center normal to axis.
// The buffer spans one domain width along each image axis, centered on center,
// with resolution pixels along the longer side.
func Take(s *Snapshot, axis Axis, center [3]float64, resolution int) (*Slice, error) {
	if axis < AxisX || axis > AxisZ {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAxis, int(axis))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if resolution <= 0 {
		return nil, fmt.Errorf("amr: resolution must be positive, got %d", resolution)
	}

	ha, va := axis.ImageAxes()
	a := int(axis)
	unit := s.UnitLength()
	box := s.BoxScale()

	plane := center[a] / unit[a]
	if plane < 0 || plane > float64(box[a]) {
		return nil, fmt.Errorf("%w: %s=%g", ErrOutsideDomain, axis, center[a])
	}
	// The upper domain face belongs to the last cell.
	if plane == float64(box[a]) {
		plane = math.Nextafter(plane, 0)
	}

	wx, wy := s.BoxSize[ha], s.BoxSize[va]
	w, h := resolution, resolution
	if wx >= wy {
		h = int(math.Max(1, math.Round(float64(resolution)*wy/wx)))
	} else {
		w = int(math.Max(1, math.Round(float64(resolution)*wx/wy)))
	}

	sl := &Slice{
		Axis:   axis,
		Field:  s.Field,
		Coord:  center[a],
		Center: center,
		XMin:   center[ha] - wx/2,
		XMax:   center[ha] + wx/2,
		YMin:   center[va] - wy/2,
		YMax:   center[va] + wy/2,
		Width:  w,
		Height: h,
		Values: make([]float64, w*h),
	}
	for i := range sl.Values {
		sl.Values[i] = math.NaN()
	}

	dx := (sl.XMax - sl.XMin) / float64(w)
	dy := (sl.YMax - sl.YMin) / float64(h)
	leaf := s.Leaves()
	ps := s.PatchSize

	for pi := range s.Patches {
		p := &s.Patches[pi]
		ext := s.Extent(p.Level)
		if plane < float64(p.Corner[a]) || plane >= float64(p.Corner[a]+ext) {
			continue
		}

		x0 := float64(p.Corner[ha]) * unit[ha]
		x1 := float64(p.Corner[ha]+ext) * unit[ha]
		y0 := float64(p.Corner[va]) * unit[va]
		y1 := float64(p.Corner[va]+ext) * unit[va]

		sl.Grids = append(sl.Grids, GridRect{
			Level: p.Level,
			X0:    (x0 - sl.XMin) / dx,
			X1:    (x1 - sl.XMin) / dx,
			Y0:    (sl.YMax - y1) / dy,
			Y1:    (sl.YMax - y0) / dy,
		})

		if !leaf[pi] {
			continue
		}

		sc := float64(s.Scale(p.Level))
		var idx [3]int
		idx[a] = clampCell(int((plane-float64(p.Corner[a]))/sc), ps)

		// Pixels whose centers fall in [x0, x1) x [y0, y1).
		c0 := maxInt(0, int(math.Ceil((x0-sl.XMin)/dx-0.5)))
		c1 := minInt(w, int(math.Ceil((x1-sl.XMin)/dx-0.5)))
		r0 := maxInt(0, int(math.Floor((sl.YMax-y1)/dy-0.5))+1)
		r1 := minInt(h, int(math.Floor((sl.YMax-y0)/dy-0.5))+1)

		for r := r0; r < r1; r++ {
			yc := sl.YMax - (float64(r)+0.5)*dy
			idx[va] = clampCell(int((yc/unit[va]-float64(p.Corner[va]))/sc), ps)
			row := sl.Values[r*w : (r+1)*w]
			for c := c0; c < c1; c++ {
				xc := sl.XMin + (float64(c)+0.5)*dx
				idx[ha] = clampCell(int((xc/unit[ha]-float64(p.Corner[ha]))/sc), ps)
				row[c] = s.cell(p, idx)
			}
		}
	}

	return sl, nil
}

func (sl *Slice) At(c, r int) float64 {
	return sl.Values[r*sl.Width+c]
}

// Row returns a copy of buffer row r.
func (sl *Slice) Row(r int) []float64 {
	out := make([]float64, sl.Width)
	copy(out, sl.Values[r*sl.Width:(r+1)*sl.Width])
	return out
}

// Stats summarizes the finite pixels of the buffer.
func (sl *Slice) Stats() Stats {
	var st Stats
	var sum, sumSq float64
	for _, v := range sl.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if st.Pixels == 0 || v < st.Min {
			st.Min = v
		}
		if st.Pixels == 0 || v > st.Max {
			st.Max = v
		}
		sum += v
		sumSq += v * v
		st.Pixels++
	}
	if st.Pixels == 0 {
		st.Min, st.Max, st.Mean, st.Std = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return st
	}
	n := float64(st.Pixels)
	st.Mean = sum / n
	st.Std = math.Sqrt(math.Max(0, sumSq/n-st.Mean*st.Mean))
	return st
}

func clampCell(i, ps int) int {
	if i < 0 {
		return 0
	}
	if i >= ps {
		return ps - 1
	}
	return i
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
