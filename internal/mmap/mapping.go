package mmap

import (
	"io"
	"os"
	"sync/atomic"
)

// Mapping represents a memory-mapped file region.
// It owns the underlying byte slice and is responsible for unmapping it.
type Mapping struct {
	data     []byte
	size     int
	writable bool
	closed   atomic.Bool
	// unmap is the platform-specific function to unmap the memory.
	unmap func([]byte) error
}

// Map maps size bytes of f into memory. The file must be at least size bytes
// long; extending it first is the caller's job. With writable set, stores
// through Bytes() are carried to the file (flush with Sync).
func Map(f *os.File, size int, writable bool) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	data, unmapFunc, err := osMap(f, size, writable)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		data:     data,
		size:     size,
		writable: writable,
		unmap:    unmapFunc,
	}, nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

// Bytes returns the underlying byte slice.
// Warning: The slice is valid only until Close() is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Writable reports whether stores through the mapping reach the file.
func (m *Mapping) Writable() bool {
	return m.writable
}

// Sync flushes modified mapped pages back to the file.
func (m *Mapping) Sync() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if !m.writable {
		return ErrReadOnly
	}
	if m.data == nil {
		return nil
	}
	return osSync(m.data)
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (n int, err error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
