package res25joy

import "errors"

var (
	// ErrNotFound is returned when a requested path does not exist
	ErrNotFound = errors.New("not found")
	// ErrIsDir is returned when a download path resolves to a directory
	ErrIsDir = errors.New("is a directory")
	// ErrTooLarge is returned when a declared upload length exceeds the configured maximum
	ErrTooLarge = errors.New("payload too large")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)
