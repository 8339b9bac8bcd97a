package boltgo

import (
	"github.com/hupe1980/boltgo/internal/pagepool"
	"github.com/hupe1980/boltgo/resource"
)

const (
	// DefaultAllocSize is the amount of space allocated when the data file
	// needs to grow. Growing in coarse quanta amortizes the cost of
	// truncate() and fsync().
	DefaultAllocSize = 1 << 24 // 16 MiB
)

type options struct {
	readOnly        bool
	noGrowSync      bool
	pageSize        int
	initialMmapSize uint64
	allocSize       uint64
	maxMmapSize     uint64
	maxMmapStep     uint64
	poolCapacity    int
	pageReset       pagepool.ResetFunc
	logger          *Logger
	metrics         MetricsCollector
	controller      *resource.Controller
}

// Option configures Open behavior.
//
// Options primarily exist to avoid exploding the API surface with
// configuration-specific constructor variants.
type Option func(*options)

// WithReadOnly opens the database in read-only mode. The mapping covers the
// current file size and Grow is rejected.
func WithReadOnly() Option {
	return func(o *options) {
		o.readOnly = true
	}
}

// WithNoGrowSync disables fsync() during file growth. Better growth
// performance at the cost of potential data loss on power failure.
func WithNoGrowSync() Option {
	return func(o *options) {
		o.noGrowSync = true
	}
}

// WithPageSize overrides the page size. Defaults to the native OS page size.
// Must be a power of two of at least 512 bytes.
func WithPageSize(size int) Option {
	return func(o *options) {
		o.pageSize = size
	}
}

// WithInitialMmapSize sets the initial size of the memory-mapped region.
//
// If this value is large enough to cover the database file plus expected
// growth, readers never block writers on mapping resizes.
func WithInitialMmapSize(size uint64) Option {
	return func(o *options) {
		o.initialMmapSize = size
	}
}

// WithAllocSize sets the file growth quantum. Must be a power of two.
// Defaults to DefaultAllocSize.
func WithAllocSize(size uint64) Option {
	return func(o *options) {
		if size > 0 && size&(size-1) == 0 {
			o.allocSize = size
		}
	}
}

// WithMaxMmapSize caps the memory-mapped region. Defaults to DefaultMaxMmapSize.
func WithMaxMmapSize(size uint64) Option {
	return func(o *options) {
		if size > 0 {
			o.maxMmapSize = size
		}
	}
}

// WithMaxMmapStep caps a single mapping growth step. Must be a power of two.
// Defaults to DefaultMaxMmapStep.
func WithMaxMmapStep(step uint64) Option {
	return func(o *options) {
		if step > 0 && step&(step-1) == 0 {
			o.maxMmapStep = step
		}
	}
}

// WithPoolCapacity bounds each per-worker page cache of the scratch page
// pool. Defaults to pagepool.DefaultLocalCapacity.
func WithPoolCapacity(n int) Option {
	return func(o *options) {
		o.poolCapacity = n
	}
}

// WithPageReset installs a hook invoked on every scratch page returned to the
// pool, with exclusive access to the page. The hook must not fail and must be
// safe for concurrent invocation.
func WithPageReset(fn pagepool.ResetFunc) Option {
	return func(o *options) {
		o.pageReset = fn
	}
}

// WithLogger configures the logger. Defaults to NoopLogger.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsCollector configures metrics collection. Defaults to
// NoopMetricsCollector.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// WithResourceController attaches a resource controller that tracks mapped
// memory and throttles growth IO. Defaults to no accounting.
func WithResourceController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}
