package domain

import "errors"

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on unique-key collisions, e.g. a duplicate
	// transaction id or id tag.
	ErrConflict = errors.New("already exists")

	// ErrValidation is returned for malformed administrative input.
	ErrValidation = errors.New("invalid input")

	// ErrIncomplete is returned when a cost computation is requested for a
	// transaction that has not been stopped yet.
	ErrIncomplete = errors.New("transaction not completed")
)
