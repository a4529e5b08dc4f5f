// Package gamer reads GAMER HDF5 snapshots into amr snapshots.
package gamer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/scigolib/hdf5"

	"github.com/san-kum/phaseslice/internal/amr"
)

const (
	gridDataGroup = "/GridData/"
	cornerPath    = "/Tree/Corner"
	fatherPath    = "/Tree/Father"
	timePath      = "/Info/Time"
	unitTimePath  = "/Info/UnitTime"
	boxSizePath   = "/Info/BoxSize"
)

// Loader loads one field of a snapshot.
type Loader interface {
	Load(ctx context.Context, path, field string) (*amr.Snapshot, error)
}

// HDF5Loader reads snapshots with the pure Go HDF5 decoder.
type HDF5Loader struct {
	log *slog.Logger
}

func NewLoader(log *slog.Logger) *HDF5Loader {
	return &HDF5Loader{log: log}
}

func (l *HDF5Loader) Load(ctx context.Context, path, field string) (*amr.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := hdf5.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	datasets := make(map[string]*hdf5.Dataset)
	f.Walk(func(p string, obj hdf5.Object) {
		if ds, ok := obj.(*hdf5.Dataset); ok {
			datasets[normalize(p)] = ds
		}
	})

	read := func(name string, required bool) ([]float64, error) {
		ds, ok := datasets[name]
		if !ok {
			if required {
				return nil, fmt.Errorf("%w: %s in %s", ErrMissingDataset, name, path)
			}
			return nil, nil
		}
		vals, err := ds.Read()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return vals, nil
	}

	var raw Raw
	if raw.Field, err = read(gridDataGroup+field, true); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if raw.Corner, err = read(cornerPath, true); err != nil {
		return nil, err
	}
	if raw.Father, err = read(fatherPath, true); err != nil {
		return nil, err
	}

	scalar := func(name string) (float64, error) {
		vals, err := read(name, false)
		if err != nil || len(vals) == 0 {
			return 0, err
		}
		return vals[0], nil
	}
	if raw.Time, err = scalar(timePath); err != nil {
		return nil, err
	}
	if raw.UnitTime, err = scalar(unitTimePath); err != nil {
		return nil, err
	}
	if raw.BoxSize, err = read(boxSizePath, false); err != nil {
		return nil, err
	}

	if _, ok := datasets[timePath]; !ok {
		l.log.Warn("snapshot has no time dataset, timestamp will show t = 0", "path", path, "dataset", timePath)
	}
	if _, ok := datasets[unitTimePath]; !ok {
		l.log.Debug("snapshot has no time unit dataset, using code units", "path", path, "dataset", unitTimePath)
	}

	return Assemble(path, field, raw)
}

// Fields lists the fields stored under /GridData.
func Fields(path string) ([]string, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var fields []string
	f.Walk(func(p string, obj hdf5.Object) {
		if _, ok := obj.(*hdf5.Dataset); !ok {
			return
		}
		if name, ok := strings.CutPrefix(normalize(p), gridDataGroup); ok {
			fields = append(fields, name)
		}
	})
	return fields, nil
}

func normalize(p string) string {
	p = strings.TrimSuffix(p, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
