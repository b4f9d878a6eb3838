// server/internal/repository/errors.go
package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup by id or key matches nothing.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateKey maps a unique index violation.
	ErrDuplicateKey = errors.New("duplicate key")
)
