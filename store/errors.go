package store

import "errors"

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when no session exists for the given id.
	ErrNotFound = errors.New("session not found")

	// ErrUnknownModel is returned when model-registry validation rejects
	// the requested model.
	ErrUnknownModel = errors.New("model not found")

	// ErrLoadFailed wraps backend read failures other than a missing key.
	ErrLoadFailed = errors.New("load failed")

	// ErrSaveFailed wraps backend write failures.
	ErrSaveFailed = errors.New("save failed")
)
