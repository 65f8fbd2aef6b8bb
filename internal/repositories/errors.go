package repositories

import "errors"

// Storage-boundary errors. Services and handlers match on these with
// errors.Is; the wrapped message carries the detail.
var (
	// ErrDuplicateEmail is returned by UserRepository.Create when the email
	// column's unique index rejects the insert. Uniqueness is arbitrated by
	// the database, not by an application-level existence check.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
)
