package storage

import "errors"

// Storage errors shared by every Repository implementation.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when a total already exists for the timestamp.
	// Totals are written once and never recomputed.
	ErrDuplicateKey = errors.New("duplicate key: total already exists for timestamp")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
