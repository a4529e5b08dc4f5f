package amr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type CenterMode int

const (
	CenterDomain CenterMode = iota
	CenterMax
	CenterMin
	CenterPoint
)

type Center struct {
	Mode  CenterMode
	Point [3]float64
}

// ParseCenter accepts "c"/"center", "m"/"max", "min" or an explicit "x,y,z" in code units.
func ParseCenter(s string) (Center, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "c", "center":
		return Center{Mode: CenterDomain}, nil
	case "m", "max":
		return Center{Mode: CenterMax}, nil
	case "min":
		return Center{Mode: CenterMin}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Center{}, fmt.Errorf("%w: %q", ErrInvalidCenter, s)
	}
	var c Center
	c.Mode = CenterPoint
	for d, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Center{}, fmt.Errorf("%w: %q: %v", ErrInvalidCenter, s, err)
		}
		c.Point[d] = v
	}
	return c, nil
}

func (c Center) String() string {
	switch c.Mode {
	case CenterDomain:
		return "c"
	case CenterMax:
		return "max"
	case CenterMin:
		return "min"
	}
	return fmt.Sprintf("%g,%g,%g", c.Point[0], c.Point[1], c.Point[2])
}

// Resolve returns the center position in code units for snapshot s.
func (c Center) Resolve(s *Snapshot) ([3]float64, error) {
	switch c.Mode {
	case CenterDomain:
		return [3]float64{s.BoxSize[0] / 2, s.BoxSize[1] / 2, s.BoxSize[2] / 2}, nil
	case CenterMax:
		return s.extremum(func(a, b float64) bool { return a > b })
	case CenterMin:
		return s.extremum(func(a, b float64) bool { return a < b })
	}
	for d := 0; d < 3; d++ {
		if c.Point[d] < 0 || c.Point[d] > s.BoxSize[d] {
			return c.Point, fmt.Errorf("%w: center %v, box %v", ErrOutsideDomain, c.Point, s.BoxSize)
		}
	}
	return c.Point, nil
}

// extremum locates the leaf cell preferred by better; ties keep the finer cell.
func (s *Snapshot) extremum(better func(a, b float64) bool) ([3]float64, error) {
	if len(s.Patches) == 0 {
		return [3]float64{}, ErrNoPatches
	}
	leaf := s.Leaves()
	ps := s.PatchSize

	found := false
	var best float64
	var bestPatch *Patch
	var bestIdx [3]int
	for pi := range s.Patches {
		if !leaf[pi] {
			continue
		}
		p := &s.Patches[pi]
		for k := 0; k < ps; k++ {
			for j := 0; j < ps; j++ {
				for i := 0; i < ps; i++ {
					idx := [3]int{i, j, k}
					v := s.cell(p, idx)
					if math.IsNaN(v) {
						continue
					}
					if !found || better(v, best) || (v == best && p.Level > bestPatch.Level) {
						found = true
						best = v
						bestPatch = p
						bestIdx = idx
					}
				}
			}
		}
	}
	if !found {
		return [3]float64{}, fmt.Errorf("%w: no finite values", ErrInvalidCenter)
	}
	return s.CellCenter(bestPatch, bestIdx), nil
}
