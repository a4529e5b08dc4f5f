package gamer

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/san-kum/phaseslice/internal/amr"
)

// Raw holds the flattened datasets of one snapshot.
type Raw struct {
	Field  []float64 // NPatch x PS^3
	Corner []float64 // NPatch x 3, finest-level units
	Father []float64 // NPatch, -1 for root patches

	// Optional; zero values select defaults.
	Time     float64
	UnitTime float64
	BoxSize  []float64
}

// Assemble rebuilds the patch tree of a snapshot from its flattened datasets.
func Assemble(path, field string, raw Raw) (*amr.Snapshot, error) {
	np := len(raw.Father)
	if np == 0 {
		return nil, fmt.Errorf("%w: no patches", ErrBadLayout)
	}
	if len(raw.Corner) != 3*np {
		return nil, fmt.Errorf("%w: %d corner values for %d patches", ErrBadLayout, len(raw.Corner), np)
	}
	if len(raw.Field)%np != 0 {
		return nil, fmt.Errorf("%w: %d %s values for %d patches", ErrBadLayout, len(raw.Field), field, np)
	}
	cells := len(raw.Field) / np
	ps := int(math.Round(math.Cbrt(float64(cells))))
	if ps*ps*ps != cells || ps == 0 {
		return nil, fmt.Errorf("%w: %d cells per patch is not a cube", ErrBadLayout, cells)
	}

	levels, err := levelsFromFathers(raw.Father)
	if err != nil {
		return nil, err
	}

	snap := &amr.Snapshot{
		Name:      filepath.Base(path),
		Path:      path,
		Field:     field,
		Time:      raw.Time,
		UnitTime:  raw.UnitTime,
		PatchSize: ps,
		Patches:   make([]amr.Patch, np),
	}
	if snap.UnitTime == 0 {
		snap.UnitTime = 1
	}

	maxLevel := 0
	for i := 0; i < np; i++ {
		p := &snap.Patches[i]
		p.Level = levels[i]
		p.Father = int(raw.Father[i])
		p.Data = raw.Field[i*cells : (i+1)*cells]
		for d := 0; d < 3; d++ {
			p.Corner[d] = int64(raw.Corner[3*i+d])
		}
		if p.Level > maxLevel {
			maxLevel = p.Level
		}
	}

	snap.RootScale, err = rootScale(snap, maxLevel)
	if err != nil {
		return nil, err
	}

	box := snap.BoxScale()
	switch len(raw.BoxSize) {
	case 0:
		for d := 0; d < 3; d++ {
			snap.BoxSize[d] = float64(box[d])
		}
	case 3:
		copy(snap.BoxSize[:], raw.BoxSize)
	default:
		return nil, fmt.Errorf("%w: box size has %d values", ErrBadLayout, len(raw.BoxSize))
	}

	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

func levelsFromFathers(fathers []float64) ([]int, error) {
	n := len(fathers)
	levels := make([]int, n)
	for i := range levels {
		levels[i] = -1
	}

	var resolve func(i, depth int) (int, error)
	resolve = func(i, depth int) (int, error) {
		if levels[i] >= 0 {
			return levels[i], nil
		}
		if depth > n {
			return 0, fmt.Errorf("%w: father cycle at patch %d", ErrBadLayout, i)
		}
		f := int(fathers[i])
		if f < 0 {
			levels[i] = 0
			return 0, nil
		}
		if f >= n {
			return 0, fmt.Errorf("%w: patch %d has father %d of %d", ErrBadLayout, i, f, n)
		}
		lv, err := resolve(f, depth+1)
		if err != nil {
			return 0, err
		}
		levels[i] = lv + 1
		return levels[i], nil
	}

	for i := 0; i < n; i++ {
		if _, err := resolve(i, 0); err != nil {
			return nil, err
		}
	}
	return levels, nil
}

// rootScale recovers the level-0 cell width from the spacing of the root patches.
// A single root patch gives no spacing; the finest level then gets unit cells.
func rootScale(s *amr.Snapshot, maxLevel int) (int64, error) {
	var g int64
	for i := range s.Patches {
		p := &s.Patches[i]
		if p.Level != 0 {
			continue
		}
		for d := 0; d < 3; d++ {
			g = gcd(g, p.Corner[d])
		}
	}
	if g == 0 {
		return int64(1) << uint(maxLevel), nil
	}
	if g%int64(s.PatchSize) != 0 {
		return 0, fmt.Errorf("%w: root corner spacing %d not a multiple of patch size %d", ErrBadLayout, g, s.PatchSize)
	}
	root := g / int64(s.PatchSize)
	if root>>uint(maxLevel) == 0 {
		return 0, fmt.Errorf("%w: root scale %d too small for level %d", ErrBadLayout, root, maxLevel)
	}
	return root, nil
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
