package mmap

import "errors"

// AccessPattern provides hints to the kernel about how the data will be accessed.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be accessed sequentially.
	AccessSequential
	// AccessRandom expects data to be accessed randomly. Page-oriented
	// engines typically want this for the data file.
	AccessRandom
	// AccessWillNeed expects data to be accessed in the near future.
	AccessWillNeed
	// AccessDontNeed expects data to not be accessed in the near future.
	AccessDontNeed
)

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the requested mapping size is invalid.
	ErrInvalidSize = errors.New("mmap: invalid mapping size")
	// ErrInvalidOffset is returned when a read offset is negative.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
	// ErrReadOnly is returned when writing through a read-only mapping is attempted.
	ErrReadOnly = errors.New("mmap: mapping is read-only")
)
