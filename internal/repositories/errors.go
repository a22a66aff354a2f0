package repositories

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrAddressUnsupported is returned when the users table has no address column.
	ErrAddressUnsupported = errors.New("users table has no address column")
)
