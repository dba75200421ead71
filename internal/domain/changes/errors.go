package changes

import "errors"

var (
	// ErrInvalidInput is returned when a summary request is malformed.
	ErrInvalidInput = errors.New("invalid input")
)
