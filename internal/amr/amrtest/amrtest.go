// Package amrtest builds small in-memory snapshots for tests.
package amrtest

import "github.com/san-kum/phaseslice/internal/amr"

// Func gives the field value at a code-unit position.
type Func func(x, y, z float64) float64

// Uniform returns a level-0 snapshot of n^3 root patches of ps^3 cells each
// on a box of side box, filled from fn at cell centers.
func Uniform(n, ps int, rootScale int64, box float64, fn Func) *amr.Snapshot {
	s := &amr.Snapshot{
		Name:      "Data_000000",
		Field:     "Phase",
		UnitTime:  1,
		BoxSize:   [3]float64{box, box, box},
		PatchSize: ps,
		RootScale: rootScale,
	}
	ext := int64(ps) * rootScale
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				s.Patches = append(s.Patches, amr.Patch{
					Level:  0,
					Corner: [3]int64{int64(i) * ext, int64(j) * ext, int64(k) * ext},
					Father: -1,
				})
			}
		}
	}
	for pi := range s.Patches {
		fill(s, pi, fn)
	}
	return s
}

// Refine appends the eight sons of patch parent and returns their indices.
func Refine(s *amr.Snapshot, parent int, fn Func) []int {
	fa := s.Patches[parent]
	son := fa.Level + 1
	step := s.Extent(son)

	sons := make([]int, 0, 8)
	for dz := int64(0); dz < 2; dz++ {
		for dy := int64(0); dy < 2; dy++ {
			for dx := int64(0); dx < 2; dx++ {
				s.Patches = append(s.Patches, amr.Patch{
					Level:  son,
					Corner: [3]int64{fa.Corner[0] + dx*step, fa.Corner[1] + dy*step, fa.Corner[2] + dz*step},
					Father: parent,
				})
				pi := len(s.Patches) - 1
				fill(s, pi, fn)
				sons = append(sons, pi)
			}
		}
	}
	return sons
}

func fill(s *amr.Snapshot, pi int, fn Func) {
	p := &s.Patches[pi]
	ps := s.PatchSize
	p.Data = make([]float64, ps*ps*ps)
	for k := 0; k < ps; k++ {
		for j := 0; j < ps; j++ {
			for i := 0; i < ps; i++ {
				pos := s.CellCenter(p, [3]int{i, j, k})
				p.Data[(k*ps+j)*ps+i] = fn(pos[0], pos[1], pos[2])
			}
		}
	}
}
