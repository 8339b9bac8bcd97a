package mem

import (
	"os"
	"sync"
	"unsafe"
)

// Alignment is the byte alignment used for page buffers (one cache line).
const Alignment = 64

// DefaultPageSize is used when the operating environment does not report a
// native page size.
const DefaultPageSize = 4096

var (
	pageSizeOnce sync.Once
	pageSize     int
)

// PageSize returns the native page size of the operating environment.
// Falls back to DefaultPageSize if the OS reports a nonsensical value.
func PageSize() int {
	pageSizeOnce.Do(func() {
		pageSize = os.Getpagesize()
		if pageSize <= 0 {
			pageSize = DefaultPageSize
		}
	})
	return pageSize
}

// AllocAligned allocates a byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure
// alignment. The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	// Allocate size + alignment so an aligned offset always exists within
	// the buffer.
	totalSize := size + Alignment
	buf := make([]byte, totalSize)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size)]
}

// IsAligned reports whether the first byte of b sits on an Alignment boundary.
func IsAligned(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	return uintptr(unsafe.Pointer(&b[0]))&(Alignment-1) == 0 //nolint:gosec // address inspection only
}

// AlignTo rounds size up to the next multiple of alignment.
// The alignment must be a power of two.
func AlignTo(size, alignment uint64) uint64 {
	return (size + alignment - 1) &^ (alignment - 1)
}
