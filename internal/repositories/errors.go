package repositories

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned when a filter matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate record")
)
