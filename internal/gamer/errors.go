package gamer

import "errors"

var (
	// ErrMissingDataset indicates a required dataset is absent from the file.
	ErrMissingDataset = errors.New("gamer: missing dataset")

	// ErrBadLayout indicates datasets whose shapes do not describe a patch tree.
	ErrBadLayout = errors.New("gamer: inconsistent snapshot layout")
)
