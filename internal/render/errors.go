package render

import "errors"

var (
	// ErrFieldNotLoaded indicates a setter or plot for a field the snapshot does not carry.
	ErrFieldNotLoaded = errors.New("render: field not loaded")

	// ErrUnknownUnit indicates an unsupported time unit.
	ErrUnknownUnit = errors.New("render: unknown time unit")

	// ErrUnknownCorner indicates an unsupported annotation corner.
	ErrUnknownCorner = errors.New("render: unknown corner")

	// ErrInvalidDPI indicates a non-positive output resolution.
	ErrInvalidDPI = errors.New("render: dpi must be positive")
)
