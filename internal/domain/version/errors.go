package version

import "errors"

var (
	// ErrInvalidInput indicates invalid input for version operations.
	ErrInvalidInput = errors.New("invalid version input")
)
