package amr

import (
	"fmt"
	"math"
	"strings"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(s) {
	case "x", "0":
		return AxisX, nil
	case "y", "1":
		return AxisY, nil
	case "z", "2":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAxis, s)
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// ImageAxes returns the horizontal and vertical image axes of a slice normal to a.
func (a Axis) ImageAxes() (h, v int) {
	switch a {
	case AxisX:
		return 1, 2
	case AxisY:
		return 2, 0
	default:
		return 0, 1
	}
}

// Patch is a PatchSize^3 block of cells. Data is indexed (k*PS+j)*PS+i with x fastest.
type Patch struct {
	Level  int
	Corner [3]int64
	Father int
	Data   []float64
}

type Snapshot struct {
	Name  string
	Path  string
	Field string

	// Time is in code units; UnitTime converts it to seconds.
	Time     float64
	UnitTime float64
	BoxSize  [3]float64

	PatchSize int
	RootScale int64
	Patches   []Patch
}

// Scale returns the cell width of level in finest-level units.
func (s *Snapshot) Scale(level int) int64 {
	return s.RootScale >> uint(level)
}

// Extent returns the patch width of level in finest-level units.
func (s *Snapshot) Extent(level int) int64 {
	return int64(s.PatchSize) * s.Scale(level)
}

func (s *Snapshot) MaxLevel() int {
	top := 0
	for i := range s.Patches {
		if s.Patches[i].Level > top {
			top = s.Patches[i].Level
		}
	}
	return top
}

// BoxScale is the domain size in finest-level units, spanned by the root patches.
func (s *Snapshot) BoxScale() [3]int64 {
	var box [3]int64
	ext := s.Extent(0)
	for i := range s.Patches {
		p := &s.Patches[i]
		if p.Level != 0 {
			continue
		}
		for d := 0; d < 3; d++ {
			if e := p.Corner[d] + ext; e > box[d] {
				box[d] = e
			}
		}
	}
	return box
}

// UnitLength returns the code length of one finest-level unit per axis.
func (s *Snapshot) UnitLength() [3]float64 {
	box := s.BoxScale()
	var u [3]float64
	for d := 0; d < 3; d++ {
		if box[d] > 0 {
			u[d] = s.BoxSize[d] / float64(box[d])
		}
	}
	return u
}

func (s *Snapshot) TimeSeconds() float64 {
	unit := s.UnitTime
	if unit == 0 {
		unit = 1
	}
	return s.Time * unit
}

func (s *Snapshot) Validate() error {
	if len(s.Patches) == 0 {
		return ErrNoPatches
	}
	if s.PatchSize <= 0 {
		return fmt.Errorf("%w: patch size %d", ErrBadPatch, s.PatchSize)
	}
	if s.RootScale <= 0 {
		return fmt.Errorf("%w: root scale %d", ErrBadPatch, s.RootScale)
	}
	cells := s.PatchSize * s.PatchSize * s.PatchSize
	for i := range s.Patches {
		p := &s.Patches[i]
		if len(p.Data) != cells {
			return fmt.Errorf("%w: patch %d has %d cells, want %d", ErrBadPatch, i, len(p.Data), cells)
		}
		if p.Level < 0 || s.Scale(p.Level) == 0 {
			return fmt.Errorf("%w: patch %d level %d", ErrBadPatch, i, p.Level)
		}
		if (p.Father < 0) != (p.Level == 0) {
			return fmt.Errorf("%w: patch %d level %d father %d", ErrBadPatch, i, p.Level, p.Father)
		}
		if p.Father >= 0 {
			if p.Father >= len(s.Patches) || s.Patches[p.Father].Level != p.Level-1 {
				return fmt.Errorf("%w: patch %d has inconsistent father %d", ErrBadPatch, i, p.Father)
			}
		}
	}
	for d := 0; d < 3; d++ {
		if s.BoxSize[d] <= 0 || math.IsNaN(s.BoxSize[d]) {
			return fmt.Errorf("%w: box size %v", ErrBadPatch, s.BoxSize)
		}
	}
	return nil
}

// Leaves reports, per patch, whether the patch has no sons.
func (s *Snapshot) Leaves() []bool {
	leaf := make([]bool, len(s.Patches))
	for i := range leaf {
		leaf[i] = true
	}
	for i := range s.Patches {
		if f := s.Patches[i].Father; f >= 0 && f < len(leaf) {
			leaf[f] = false
		}
	}
	return leaf
}

func (s *Snapshot) cell(p *Patch, idx [3]int) float64 {
	ps := s.PatchSize
	return p.Data[(idx[2]*ps+idx[1])*ps+idx[0]]
}

// CellCenter returns the code-unit position of cell idx of patch p.
func (s *Snapshot) CellCenter(p *Patch, idx [3]int) [3]float64 {
	unit := s.UnitLength()
	sc := float64(s.Scale(p.Level))
	var pos [3]float64
	for d := 0; d < 3; d++ {
		pos[d] = (float64(p.Corner[d]) + (float64(idx[d])+0.5)*sc) * unit[d]
	}
	return pos
}
