package activity

import "errors"

var (
	// ErrInvalidInput indicates invalid input for activity operations.
	ErrInvalidInput = errors.New("invalid activity input")
)
