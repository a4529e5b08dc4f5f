package amr

import "errors"

var (
	// ErrNoPatches indicates a snapshot without any patch.
	ErrNoPatches = errors.New("amr: snapshot has no patches")

	// ErrBadPatch indicates inconsistent patch geometry or data length.
	ErrBadPatch = errors.New("amr: malformed patch")

	// ErrInvalidAxis indicates an axis other than x, y or z.
	ErrInvalidAxis = errors.New("amr: invalid axis")

	// ErrInvalidCenter indicates an unparseable center string.
	ErrInvalidCenter = errors.New("amr: invalid center")

	// ErrOutsideDomain indicates a slice plane outside the simulation box.
	ErrOutsideDomain = errors.New("amr: slice plane outside domain")
)
