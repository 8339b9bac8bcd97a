package boltgo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/boltgo/internal/pagepool"
	"github.com/hupe1980/boltgo/resource"
)

func openTestDB(t *testing.T, optFns ...Option) *DB {
	t.Helper()

	opts := append([]Option{WithPageSize(4096)}, optFns...)

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "data.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestOpen_Fresh(t *testing.T) {
	db := openTestDB(t)

	assert.Equal(t, 4096, db.PageSize())

	// Four initial pages, rounded up to the smallest sizing level.
	assert.Equal(t, 1<<15, db.Size())
	assert.Len(t, db.Bytes(), 1<<15)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	ctx := context.Background()

	db, err := Open(ctx, path, WithPageSize(4096))
	require.NoError(t, err)

	copy(db.Bytes()[128:], "survives reopen")
	require.NoError(t, db.Sync())
	require.NoError(t, db.Close())

	db, err = Open(ctx, path, WithPageSize(4096))
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, []byte("survives reopen"), db.Bytes()[128:143])
}

func TestOpen_InvalidPageSize(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.db")

	for _, ps := range []int{100, 1000, 4095, 256} {
		_, err := Open(ctx, path, WithPageSize(ps))

		var perr *ErrInvalidPageSize
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, ps, perr.PageSize)
	}
}

func TestOpen_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")
	ctx := context.Background()

	db, err := Open(ctx, path, WithPageSize(4096))
	require.NoError(t, err)
	copy(db.Bytes(), "read side")
	require.NoError(t, db.Sync())
	size := db.Size()
	require.NoError(t, db.Close())

	ro, err := Open(ctx, path, WithPageSize(4096), WithReadOnly())
	require.NoError(t, err)
	defer ro.Close()

	assert.Equal(t, size, ro.Size())
	assert.Equal(t, []byte("read side"), ro.Bytes()[:9])

	assert.ErrorIs(t, ro.Grow(ctx, uint64(size)*2), ErrReadOnly)
	assert.ErrorIs(t, ro.Sync(), ErrReadOnly)
}

func TestOpen_ReadOnlyMissing(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.db"), WithReadOnly())
	assert.Error(t, err)
}

func TestDB_Grow(t *testing.T) {
	db := openTestDB(t, WithAllocSize(1<<16), WithNoGrowSync())
	ctx := context.Background()

	copy(db.Bytes(), "kept across grow")

	require.NoError(t, db.Grow(ctx, 1<<20))
	assert.Equal(t, 1<<20, db.Size())
	assert.Equal(t, []byte("kept across grow"), db.Bytes()[:16])

	// Growth is monotone; smaller requests are no-ops.
	require.NoError(t, db.Grow(ctx, 1<<16))
	assert.Equal(t, 1<<20, db.Size())

	// Sub-quantum requests coalesce onto sizing levels.
	require.NoError(t, db.Grow(ctx, 1<<20+1))
	assert.Equal(t, 1<<21, db.Size())
}

func TestDB_GrowTooLarge(t *testing.T) {
	db := openTestDB(t, WithMaxMmapSize(1<<20))

	err := db.Grow(context.Background(), 2<<20)
	assert.ErrorIs(t, err, ErrMmapTooLarge)

	// The existing mapping stays usable after a rejected growth.
	assert.Equal(t, 1<<15, db.Size())
	assert.NotNil(t, db.Bytes())
}

func TestDB_InitialMmapSize(t *testing.T) {
	db := openTestDB(t, WithInitialMmapSize(1<<20))
	assert.Equal(t, 1<<20, db.Size())
}

func TestDB_Close(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Close())
	require.NoError(t, db.Close(), "close must be idempotent")

	assert.ErrorIs(t, db.Grow(ctx, 1<<20), ErrDatabaseClosed)
	assert.ErrorIs(t, db.Sync(), ErrDatabaseClosed)
	assert.Nil(t, db.Bytes())
}

func TestDB_Pool(t *testing.T) {
	db := openTestDB(t, WithPoolCapacity(4))

	local := db.Pool().Local()
	defer local.Close()

	p := local.Get()
	require.NotNil(t, p)
	assert.Equal(t, db.PageSize(), p.Size())
	local.Put(p)

	st := db.PoolStats()
	assert.EqualValues(t, 1, st.FreshAllocs)
	assert.EqualValues(t, 1, st.Puts)
}

func TestDB_PageReset(t *testing.T) {
	resets := 0
	db := openTestDB(t, WithPageReset(func(p *pagepool.Page) {
		resets++
	}))

	pool := db.Pool()
	pool.Put(pool.Get())
	assert.Equal(t, 1, resets)
}

func TestDB_Metrics(t *testing.T) {
	mc := &BasicMetricsCollector{}
	db := openTestDB(t, WithMetricsCollector(mc), WithAllocSize(1<<16))
	ctx := context.Background()

	assert.EqualValues(t, 1, mc.OpenCount.Load())

	require.NoError(t, db.Grow(ctx, 1<<20))
	assert.EqualValues(t, 1, mc.GrowCount.Load())
	assert.EqualValues(t, 1<<20, mc.LastGrowSize.Load())

	require.NoError(t, db.Sync())
	assert.EqualValues(t, 1, mc.SyncCount.Load())
	assert.Zero(t, mc.GrowErrors.Load())
}

func TestDB_ResourceController(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	db := openTestDB(t, WithResourceController(rc), WithAllocSize(1<<16))

	assert.EqualValues(t, db.Size(), rc.MappedUsage())

	require.NoError(t, db.Grow(context.Background(), 1<<20))
	assert.EqualValues(t, db.Size(), rc.MappedUsage())

	require.NoError(t, db.Close())
	assert.Zero(t, rc.MappedUsage(), "all mapped budget must be released on close")
}

func TestDB_ResourceControllerLimit(t *testing.T) {
	// A budget below the initial mapping size can never be satisfied; the
	// blocking reservation must give up with the context.
	rc := resource.NewController(resource.Config{MappedLimitBytes: 1 << 14})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Open(ctx, filepath.Join(t.TempDir(), "data.db"),
		WithPageSize(4096), WithResourceController(rc))
	assert.Error(t, err, "open must fail when the mapped budget cannot cover the region")
	assert.Zero(t, rc.MappedUsage())
}
