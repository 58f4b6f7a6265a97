package storage

import "errors"

var (
	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorruptSnapshot is returned when a persisted analysis
	// snapshot cannot be decoded. Callers treat it as an empty cache.
	ErrCorruptSnapshot = errors.New("corrupt analysis snapshot")
)
