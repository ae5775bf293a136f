package search

import "errors"

var (
	// ErrCancelled is returned when the caller's context ends a search or
	// an export before it completes.
	ErrCancelled = errors.New("operation cancelled")

	// ErrNoRoots indicates a request without any search roots.
	ErrNoRoots = errors.New("no search roots given")
)
