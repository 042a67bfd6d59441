package club

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced user or match id has no row.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput means a request field is missing or out of range.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict means a row changed between read and write.
	ErrConflict = errors.New("conflict")
)

// UserNotFound is the error for a user id with no row behind it.
func UserNotFound(id int64) error {
	return fmt.Errorf("user %d %w", id, ErrNotFound)
}

// MatchNotFound is the error for a match id with no row behind it.
func MatchNotFound(id int64) error {
	return fmt.Errorf("match %d %w", id, ErrNotFound)
}
