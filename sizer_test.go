package boltgo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMmapSizer_Levels(t *testing.T) {
	sizer := NewMmapSizer(4096)

	tests := []struct {
		requested uint64
		want      uint64
	}{
		{0, 1 << 15},
		{1, 1 << 15},
		{1 << 15, 1 << 15},
		{1<<15 + 1, 1 << 16},
		{1 << 20, 1 << 20},
		{1<<20 + 1, 1 << 21},
		{1<<30 - 1, 1 << 30},
		{1 << 30, 1 << 30},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("requested=%d", tt.requested), func(t *testing.T) {
			got, err := sizer.ComputeMmapSize(tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMmapSizer_BeyondLevels(t *testing.T) {
	sizer := NewMmapSizer(4096)

	// Barely past the largest level: rounds up a full step.
	got, err := sizer.ComputeMmapSize(1<<30 + 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2)<<30, got)

	// Several steps in: still a step multiple.
	got, err = sizer.ComputeMmapSize(5<<30 + 123)
	require.NoError(t, err)
	assert.Equal(t, uint64(6)<<30, got)

	// Step multiples map to themselves.
	got, err = sizer.ComputeMmapSize(8 << 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(8)<<30, got)
}

func TestMmapSizer_TooLarge(t *testing.T) {
	sizer := NewMmapSizer(4096)

	_, err := sizer.ComputeMmapSize(DefaultMaxMmapSize + 1)
	assert.ErrorIs(t, err, ErrMmapTooLarge)

	// The ceiling itself is accepted and clamped.
	got, err := sizer.ComputeMmapSize(DefaultMaxMmapSize)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxMmapSize, got)
	assert.LessOrEqual(t, got, DefaultMaxMmapSize)
}

func TestMmapSizer_PageAlignment(t *testing.T) {
	const pageSize = 1 << 16

	sizer := NewMmapSizerWithLimits(pageSize, DefaultMaxMmapSize, DefaultMaxMmapStep)

	for _, req := range []uint64{3<<30 + 7, 7<<30 + 1, 42 << 30} {
		got, err := sizer.ComputeMmapSize(req)
		require.NoError(t, err)
		assert.Zero(t, got%pageSize, "result must land on a page boundary (requested=%d)", req)
		assert.GreaterOrEqual(t, got, req)
	}
}

func TestMmapSizer_Monotonic(t *testing.T) {
	sizer := NewMmapSizer(4096)

	requests := []uint64{
		0, 1, 100, 1 << 14, 1 << 15, 1<<15 + 1, 1 << 18, 1 << 20, 1<<20 + 1,
		1 << 25, 1<<30 - 1, 1 << 30, 1<<30 + 1, 3 << 30, 3<<30 + 1, 100 << 30,
		1 << 42, DefaultMaxMmapSize - 1, DefaultMaxMmapSize,
	}

	var prev uint64
	for _, req := range requests {
		got, err := sizer.ComputeMmapSize(req)
		require.NoError(t, err, "requested=%d", req)
		assert.GreaterOrEqual(t, got, prev, "a larger request must never yield a smaller result (requested=%d)", req)
		assert.GreaterOrEqual(t, got, req, "result must cover the request (requested=%d)", req)
		prev = got
	}
}

func TestMmapSizer_DefaultPageSize(t *testing.T) {
	sizer := NewMmapSizer(0)
	assert.Greater(t, sizer.PageSize(), 0)
}
