package boltgo

import (
	"errors"
	"fmt"
)

var (
	// ErrMmapTooLarge is returned by MmapSizer.ComputeMmapSize when the
	// requested size exceeds the configured maximum region size. The caller
	// decides whether to refuse the growth or fail the triggering operation.
	ErrMmapTooLarge = errors.New("requested mmap size exceeds maximum")

	// ErrDatabaseClosed is returned when operating on a closed DB.
	ErrDatabaseClosed = errors.New("database closed")

	// ErrReadOnly is returned when a mutating operation hits a read-only DB.
	ErrReadOnly = errors.New("database is read-only")
)

// ErrInvalidPageSize indicates an unusable configured page size.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidPageSize struct {
	PageSize int
	cause    error
}

func (e *ErrInvalidPageSize) Error() string {
	return fmt.Sprintf("invalid page size: %d", e.PageSize)
}

func (e *ErrInvalidPageSize) Unwrap() error { return e.cause }
