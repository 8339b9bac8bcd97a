package boltgo

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/hupe1980/boltgo/internal/mem"
	"github.com/hupe1980/boltgo/internal/mmap"
	"github.com/hupe1980/boltgo/internal/pagepool"
)

const minPageSize = 512

// DB is the resource-management core of the storage engine: the memory-mapped
// data file, the growth sizing policy, and the scratch page pool.
//
// The transactional B+tree layer (buckets, cursors, node split/rebalance), the
// on-disk meta/freelist format and transaction isolation live above this type
// and are not implemented here; they consume Bytes, Grow and Pool.
type DB struct {
	path     string
	pageSize int
	opts     options

	sizer *MmapSizer
	pool  *pagepool.Pool

	// mmapMu serializes growth, remap and close against each other.
	// It does not guard reads of the mapped region.
	mmapMu   sync.Mutex
	file     *os.File
	mapping  *mmap.Mapping
	reserved int64
	closed   bool
}

// Open opens or creates the data file at path and maps it into memory, sized
// by the growth policy.
func Open(ctx context.Context, path string, optFns ...Option) (*DB, error) {
	start := time.Now()

	opts := options{
		allocSize:   DefaultAllocSize,
		maxMmapSize: DefaultMaxMmapSize,
		maxMmapStep: DefaultMaxMmapStep,
		logger:      NoopLogger(),
		metrics:     NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	db, err := open(ctx, path, opts)

	opts.metrics.RecordOpen(time.Since(start), err)
	if err != nil {
		opts.logger.LogOpen(ctx, path, 0, 0, err)
		return nil, err
	}
	opts.logger.LogOpen(ctx, path, db.pageSize, uint64(db.mapping.Size()), nil)

	return db, nil
}

func open(ctx context.Context, path string, opts options) (*DB, error) {
	pageSize := opts.pageSize
	if pageSize == 0 {
		pageSize = mem.PageSize()
	}
	if pageSize < minPageSize || pageSize&(pageSize-1) != 0 {
		return nil, &ErrInvalidPageSize{PageSize: pageSize}
	}

	flag := os.O_RDWR | os.O_CREATE
	if opts.readOnly {
		flag = os.O_RDONLY
	}

	f, err := os.OpenFile(path, flag, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	db := &DB{
		path:     path,
		pageSize: pageSize,
		opts:     opts,
		file:     f,
		sizer:    NewMmapSizerWithLimits(pageSize, opts.maxMmapSize, opts.maxMmapStep),
		pool: pagepool.New(pagepool.Options{
			PageSize:      pageSize,
			LocalCapacity: opts.poolCapacity,
			Reset:         opts.pageReset,
		}),
	}

	if err := db.mmap(ctx, opts.initialMmapSize); err != nil {
		_ = f.Close()
		return nil, err
	}

	return db, nil
}

// Path returns the path of the backing data file.
func (db *DB) Path() string { return db.path }

// PageSize returns the page size of this database.
func (db *DB) PageSize() int { return db.pageSize }

// Pool returns the scratch page pool owned by this database. Workers of the
// transaction layer obtain their per-goroutine caches from it.
func (db *DB) Pool() *pagepool.Pool { return db.pool }

// PoolStats returns a snapshot of the scratch page pool counters.
func (db *DB) PoolStats() pagepool.Stats { return db.pool.Stats() }

// Bytes returns the mapped data region. The slice is invalidated by Grow and
// Close; the layers above must not hold views across either.
func (db *DB) Bytes() []byte {
	db.mmapMu.Lock()
	defer db.mmapMu.Unlock()

	if db.mapping == nil {
		return nil
	}
	return db.mapping.Bytes()
}

// Size returns the current size of the mapped region in bytes.
func (db *DB) Size() int {
	db.mmapMu.Lock()
	defer db.mmapMu.Unlock()

	if db.mapping == nil {
		return 0
	}
	return db.mapping.Size()
}

// Grow ensures the mapped region covers at least minSize bytes, extending the
// data file and remapping as needed. The file grows in allocation-size quanta
// and the mapping according to the sizing policy, so successive small growth
// requests coalesce into few expensive remaps.
func (db *DB) Grow(ctx context.Context, minSize uint64) error {
	start := time.Now()

	db.mmapMu.Lock()
	defer db.mmapMu.Unlock()

	if db.closed {
		return ErrDatabaseClosed
	}
	if db.opts.readOnly {
		return ErrReadOnly
	}
	if db.mapping != nil && minSize <= uint64(db.mapping.Size()) {
		return nil
	}
	// Reject before quantum rounding, which would overflow on absurd requests.
	if minSize > db.opts.maxMmapSize {
		return ErrMmapTooLarge
	}

	from := uint64(db.mappingSizeLocked())

	// The file grows in allocation quanta to amortize truncate+fsync; the
	// mapping then grows along the sizing policy.
	err := db.mmapLocked(ctx, mem.AlignTo(minSize, db.opts.allocSize))

	db.opts.metrics.RecordGrow(uint64(db.mappingSizeLocked()), time.Since(start), err)
	db.opts.logger.LogGrow(ctx, from, uint64(db.mappingSizeLocked()), time.Since(start), err)

	return err
}

// Sync flushes the mapped region back to the data file.
func (db *DB) Sync() error {
	start := time.Now()

	db.mmapMu.Lock()
	defer db.mmapMu.Unlock()

	if db.closed {
		return ErrDatabaseClosed
	}
	if db.opts.readOnly {
		return ErrReadOnly
	}
	if db.mapping == nil {
		return ErrDatabaseClosed
	}

	err := db.mapping.Sync()
	db.opts.metrics.RecordSync(time.Since(start), err)
	return err
}

// Close unmaps the region, drains the page pool and closes the data file.
// Scratch pages still checked out are invisible to the pool and are not
// reclaimed; callers must return everything first.
func (db *DB) Close() error {
	db.mmapMu.Lock()
	defer db.mmapMu.Unlock()

	if db.closed {
		return nil
	}
	db.closed = true

	drained := db.pool.Drain()

	var err error
	if db.mapping != nil {
		err = db.mapping.Close()
		db.mapping = nil
	}
	db.opts.controller.ReleaseMapped(db.reserved)
	db.reserved = 0
	if closeErr := db.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	db.opts.logger.LogClose(context.Background(), db.path, drained, err)
	return err
}

func (db *DB) mappingSizeLocked() int {
	if db.mapping == nil {
		return 0
	}
	return db.mapping.Size()
}

// mmap establishes the initial mapping. Called once from open.
func (db *DB) mmap(ctx context.Context, minSize uint64) error {
	db.mmapMu.Lock()
	defer db.mmapMu.Unlock()
	return db.mmapLocked(ctx, minSize)
}

// mmapLocked (re)maps the data file so the mapping covers minSize bytes.
// Callers hold mmapMu.
func (db *DB) mmapLocked(ctx context.Context, minSize uint64) error {
	fi, err := db.file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", db.path, err)
	}
	fileSize := uint64(fi.Size())

	if db.opts.readOnly {
		if fileSize == 0 {
			return fmt.Errorf("open %s read-only: %w", db.path, mmap.ErrInvalidSize)
		}
		return db.remapLocked(ctx, fileSize, true)
	}

	// A fresh file gets room for the (future) meta pages and a first data page.
	if fileSize == 0 {
		fileSize = uint64(4 * db.pageSize)
	}
	if minSize < fileSize {
		minSize = fileSize
	}

	size, err := db.sizer.ComputeMmapSize(minSize)
	if err != nil {
		return err
	}
	if size > math.MaxInt {
		return ErrMmapTooLarge
	}

	return db.remapLocked(ctx, size, fi.Size() >= 0 && uint64(fi.Size()) >= size)
}

// remapLocked tears down the current mapping, ensures the file covers size
// bytes and maps it again. Callers hold mmapMu.
func (db *DB) remapLocked(ctx context.Context, size uint64, fileCovers bool) (err error) {
	old := int64(0)
	if db.mapping != nil {
		old = int64(db.mapping.Size())
	}

	// Reserve the mapping delta before doing any work. Together with the
	// reservation held for the old mapping this covers the new size.
	delta := int64(size) - old
	if delta > 0 {
		if err := db.opts.controller.AcquireMapped(ctx, delta); err != nil {
			return err
		}
		defer func() {
			if err != nil {
				db.opts.controller.ReleaseMapped(delta)
			}
		}()

		if err := db.opts.controller.AcquireIO(ctx, int(delta)); err != nil {
			return err
		}
	}

	if db.mapping != nil {
		if err := db.mapping.Close(); err != nil {
			return fmt.Errorf("unmap %s: %w", db.path, err)
		}
		db.mapping = nil
	}

	if !fileCovers && !db.opts.readOnly {
		if err := db.file.Truncate(int64(size)); err != nil {
			return fmt.Errorf("grow %s to %d: %w", db.path, size, err)
		}
		if !db.opts.noGrowSync {
			if err := db.file.Sync(); err != nil {
				return fmt.Errorf("sync %s: %w", db.path, err)
			}
		}
	}

	m, err := mmap.Map(db.file, int(size), !db.opts.readOnly)
	if err != nil {
		return fmt.Errorf("mmap %s: %w", db.path, err)
	}

	// Page access is random by nature; tell the kernel not to read ahead.
	_ = m.Advise(mmap.AccessRandom)

	db.mapping = m
	db.reserved = int64(size)
	return nil
}
