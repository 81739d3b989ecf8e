package ai

import "errors"

var (
	// ErrNilConfig is returned when a nil configuration is supplied.
	ErrNilConfig = errors.New("config is nil")

	// ErrHostRequired is returned when the API host is missing.
	ErrHostRequired = errors.New("API host required")

	// ErrInvalidMaxAttempts is returned when the retry budget is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
