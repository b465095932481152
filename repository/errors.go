package repository

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a guarded update matched no rows, e.g. a
	// second accept racing on the same complaint
	ErrConflict = errors.New("conflicting update")
)
