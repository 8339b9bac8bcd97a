package boltgo

import "github.com/hupe1980/boltgo/internal/mem"

const (
	// DefaultMaxMmapSize is the default maximum mmap size (256 TB).
	DefaultMaxMmapSize uint64 = 0xFFFFFFFFFFFF

	// DefaultMaxMmapStep is the default maximum mmap growth step (1 GiB).
	DefaultMaxMmapStep uint64 = 1 << 30
)

// mmapSizeLevels are the precomputed mapping sizes used below the step
// threshold. Growing along power-of-two levels amortizes remaps: small
// databases double instead of extending by the exact byte count requested.
var mmapSizeLevels = [...]uint64{
	1 << 15, 1 << 16, 1 << 17, 1 << 18, 1 << 19, 1 << 20,
	1 << 21, 1 << 22, 1 << 23, 1 << 24, 1 << 25, 1 << 26,
	1 << 27, 1 << 28, 1 << 29, 1 << 30,
}

// MmapSizer decides how far to extend the memory-mapped region when the data
// file must grow. It is a pure sizing policy: larger requests never yield
// smaller results.
type MmapSizer struct {
	pageSize    uint64
	maxMmapSize uint64
	maxMmapStep uint64
}

// NewMmapSizer creates a sizer with the default size ceiling and growth step.
func NewMmapSizer(pageSize int) *MmapSizer {
	return NewMmapSizerWithLimits(pageSize, DefaultMaxMmapSize, DefaultMaxMmapStep)
}

// NewMmapSizerWithLimits creates a sizer with an explicit maximum region size
// and maximum single growth step.
func NewMmapSizerWithLimits(pageSize int, maxMmapSize, maxMmapStep uint64) *MmapSizer {
	if pageSize <= 0 {
		pageSize = mem.PageSize()
	}
	return &MmapSizer{
		pageSize:    uint64(pageSize),
		maxMmapSize: maxMmapSize,
		maxMmapStep: maxMmapStep,
	}
}

// ComputeMmapSize calculates the mapping size for a requested byte length.
//
// Requests above the maximum region size fail with ErrMmapTooLarge. Requests
// covered by the precomputed levels return the first level that fits. Beyond
// the levels, the request is rounded up to the growth step, then to the page
// size, and clamped to the maximum region size.
func (s *MmapSizer) ComputeMmapSize(requested uint64) (uint64, error) {
	if requested > s.maxMmapSize {
		return 0, ErrMmapTooLarge
	}

	for _, level := range mmapSizeLevels {
		if requested <= level {
			return level, nil
		}
	}

	size := mem.AlignTo(requested, s.maxMmapStep)
	size = mem.AlignTo(size, s.pageSize)

	if size > s.maxMmapSize {
		size = s.maxMmapSize
	}
	return size, nil
}

// PageSize returns the page size the sizer aligns to.
func (s *MmapSizer) PageSize() int { return int(s.pageSize) }
