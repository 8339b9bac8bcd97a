package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTempFile(t *testing.T, size int) *os.File {
	t.Helper()

	f, err := os.Create(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	require.NoError(t, f.Truncate(int64(size)))
	return f
}

func TestMap_ReadOnly(t *testing.T) {
	f := createTempFile(t, 8192)
	_, err := f.WriteAt([]byte("hello"), 100)
	require.NoError(t, err)

	m, err := Map(f, 8192, false)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 8192, m.Size())
	assert.False(t, m.Writable())
	assert.Equal(t, []byte("hello"), m.Bytes()[100:105])

	assert.ErrorIs(t, m.Sync(), ErrReadOnly)
}

func TestMap_Writable(t *testing.T) {
	f := createTempFile(t, 4096)

	m, err := Map(f, 4096, true)
	require.NoError(t, err)
	defer m.Close()

	copy(m.Bytes()[42:], "mapped write")
	require.NoError(t, m.Sync())

	// Stores through the mapping must be visible through the file.
	buf := make([]byte, 12)
	_, err = f.ReadAt(buf, 42)
	require.NoError(t, err)
	assert.Equal(t, []byte("mapped write"), buf)
}

func TestMap_InvalidSize(t *testing.T) {
	f := createTempFile(t, 4096)

	_, err := Map(f, 0, false)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = Map(f, -1, false)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestMapping_Close(t *testing.T) {
	f := createTempFile(t, 4096)

	m, err := Map(f, 4096, false)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "close must be idempotent")

	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AccessRandom), ErrClosed)

	_, err = m.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMapping_ReadAt(t *testing.T) {
	f := createTempFile(t, 4096)
	_, err := f.WriteAt([]byte{1, 2, 3, 4}, 4092)
	require.NoError(t, err)

	m, err := Map(f, 4096, false)
	require.NoError(t, err)
	defer m.Close()

	buf := make([]byte, 4)
	n, err := m.ReadAt(buf, 4092)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)

	// Short read at the tail reports EOF.
	n, err = m.ReadAt(make([]byte, 8), 4092)
	assert.Equal(t, 4, n)
	assert.ErrorIs(t, err, io.EOF)

	_, err = m.ReadAt(buf, -1)
	assert.ErrorIs(t, err, ErrInvalidOffset)
}

func TestMapping_Advise(t *testing.T) {
	f := createTempFile(t, 4096)

	m, err := Map(f, 4096, false)
	require.NoError(t, err)
	defer m.Close()

	for _, p := range []AccessPattern{AccessDefault, AccessSequential, AccessRandom, AccessWillNeed, AccessDontNeed} {
		assert.NoError(t, m.Advise(p))
	}
}

func TestMap_Regrow(t *testing.T) {
	f := createTempFile(t, 4096)

	m, err := Map(f, 4096, true)
	require.NoError(t, err)
	copy(m.Bytes(), "persisted across remap")
	require.NoError(t, m.Sync())
	require.NoError(t, m.Close())

	// Grow the file, then map it again at the new size.
	require.NoError(t, f.Truncate(16384))

	m2, err := Map(f, 16384, true)
	require.NoError(t, err)
	defer m2.Close()

	assert.Equal(t, 16384, m2.Size())
	assert.Equal(t, []byte("persisted across remap"), m2.Bytes()[:22])
}
