package series

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStep indicates a non-positive index step.
	ErrInvalidStep = errors.New("series: index step must be positive")

	// ErrRangeTooLarge indicates a range selecting more than MaxEntries snapshots.
	ErrRangeTooLarge = errors.New("series: index range selects too many snapshots")

	// ErrEmptySeries indicates the index range selects no snapshots.
	ErrEmptySeries = errors.New("series: no snapshots in index range")
)

// EntryError wraps a failure with the snapshot it belongs to.
type EntryError struct {
	Index int
	Path  string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("snapshot %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}
