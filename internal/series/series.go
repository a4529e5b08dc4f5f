package series

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// NameFormat is the GAMER snapshot file name pattern.
const NameFormat = "Data_%06d"

// Range selects snapshot indices Start, Start+Step, ... up to and including End.
type Range struct {
	Start int
	End   int
	Step  int
}

// MaxEntries caps the number of snapshots one range may select.
const MaxEntries = 1 << 20

func (r Range) Validate() error {
	if r.Step <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidStep, r.Step)
	}
	_, err := r.Count()
	return err
}

// Count returns the number of selected indices without materializing them.
func (r Range) Count() (int, error) {
	if r.Step <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidStep, r.Step)
	}
	if r.Start > r.End {
		return 0, nil
	}
	// the span of two ints always fits in a uint64
	span := uint64(r.End) - uint64(r.Start)
	n := span / uint64(r.Step)
	if n >= MaxEntries {
		return 0, fmt.Errorf("%w: %d to %d by %d", ErrRangeTooLarge, r.Start, r.End, r.Step)
	}
	return int(n) + 1, nil
}

// Indices lists the selected indices; invalid or oversized ranges yield nil.
func (r Range) Indices() []int {
	n, err := r.Count()
	if err != nil || n == 0 {
		return nil
	}
	idx := make([]int, n)
	for k := range idx {
		idx[k] = r.Start + k*r.Step
	}
	return idx
}

// DataPath joins prefix and the snapshot name with a plain "/", without cleaning,
// so "../" yields "..//Data_000000".
func DataPath(prefix string, idx int) string {
	return prefix + "/" + fmt.Sprintf(NameFormat, idx)
}

type Entry struct {
	Index int
	Path  string
}

type Series struct {
	entries   []Entry
	KeepGoing bool
}

func New(prefix string, r Range) (*Series, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	indices := r.Indices()
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: start=%d end=%d", ErrEmptySeries, r.Start, r.End)
	}
	entries := make([]Entry, len(indices))
	for i, idx := range indices {
		entries[i] = Entry{Index: idx, Path: DataPath(prefix, idx)}
	}
	return &Series{entries: entries}, nil
}

// FromPaths builds a series over explicit files; indices are positions in paths.
func FromPaths(paths []string) (*Series, error) {
	if len(paths) == 0 {
		return nil, ErrEmptySeries
	}
	entries := make([]Entry, len(paths))
	for i, p := range paths {
		entries[i] = Entry{Index: i, Path: p}
	}
	return &Series{entries: entries}, nil
}

func (s *Series) Len() int { return len(s.entries) }

func (s *Series) Paths() []string {
	paths := make([]string, len(s.entries))
	for i, e := range s.entries {
		paths[i] = e.Path
	}
	return paths
}

// Piter calls fn for every entry with at most workers calls in flight.
// Without KeepGoing the first failure cancels the context handed to the
// remaining calls and is returned; with KeepGoing all failures are joined.
func (s *Series) Piter(ctx context.Context, workers int, fn func(ctx context.Context, e Entry) error) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if s.KeepGoing {
		return s.piterAll(ctx, workers, fn)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, e := range s.entries {
		e := e
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fn(gctx, e); err != nil {
				return &EntryError{Index: e.Index, Path: e.Path, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Series) piterAll(ctx context.Context, workers int, fn func(ctx context.Context, e Entry) error) error {
	errs := make([]error, len(s.entries))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, e := range s.entries {
		i, e := i, e
		g.Go(func() error {
			err := ctx.Err()
			if err == nil {
				err = fn(ctx, e)
			}
			if err != nil {
				errs[i] = &EntryError{Index: e.Index, Path: e.Path, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
