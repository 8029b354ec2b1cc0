package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/poolkit/pool"
)

func newTestDispatcher(t *testing.T, buckets ...pool.BucketConfig) (*pool.Pool, *pool.Dispatcher) {
	t.Helper()
	p, err := pool.New(pool.Layout{Name: "vec", Buckets: buckets})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, p.Close()) })
	return p, pool.NewDispatcher(p)
}

func usedBlocks(p *pool.Pool) int {
	total := 0
	for _, s := range p.Stats() {
		total += s.UsedBlocks
	}
	return total
}

func TestVector_PushGrows(t *testing.T) {
	p, d := newTestDispatcher(t,
		pool.BucketConfig{BlockSize: 8, BlockCount: 512},
		pool.BucketConfig{BlockSize: 24, BlockCount: 1024},
	)
	v := New[int64](d)

	for i := range 1000 {
		require.NoError(t, v.Push(int64(i*3)))
	}
	assert.Equal(t, 1000, v.Len())
	assert.Equal(t, 1024, v.Cap())

	for i := range 1000 {
		x, err := v.At(i)
		require.NoError(t, err)
		require.Equal(t, int64(i*3), x)
	}

	// Only the live allocation is held: 1024 int64 = 8192 bytes needs 1024
	// blocks of 8, more than that bucket has, so it lives in 342 blocks of 24.
	assert.Equal(t, 342, usedBlocks(p))

	v.Release()
	assert.Zero(t, usedBlocks(p), "old allocations are returned with matching lengths")
	assert.Zero(t, v.Len())
}

func TestVector_OutOfMemoryKeepsContents(t *testing.T) {
	_, d := newTestDispatcher(t, pool.BucketConfig{BlockSize: 8, BlockCount: 10})
	v := New[uint32](d)

	for i := range 8 {
		require.NoError(t, v.Push(uint32(i)))
	}
	// Capacity 8 sits in blocks 4..7; growing to 16 needs a run of 8 blocks
	// while the old allocation is still live.
	err := v.Push(8)
	require.ErrorIs(t, err, pool.ErrOutOfMemory)
	assert.Equal(t, 8, v.Len())
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 6, 7}, v.Slice())
}

func TestVector_SetAndBounds(t *testing.T) {
	_, d := newTestDispatcher(t, pool.BucketConfig{BlockSize: 8, BlockCount: 64})
	v := New[float64](d)
	require.NoError(t, v.Reserve(4))
	assert.Equal(t, 4, v.Cap())
	require.NoError(t, v.Reserve(2), "shrinking reserve is a no-op")

	require.NoError(t, v.Push(1.5))
	require.NoError(t, v.Set(0, 2.5))
	x, err := v.At(0)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, x, 0)

	_, err = v.At(1)
	require.ErrorIs(t, err, ErrIndex)
	require.ErrorIs(t, v.Set(-1, 0), ErrIndex)
}

// TestVector_MisalignedBlockRejected uses 12-byte blocks: the second int64
// vector lands on offset 12, which is not 8-byte aligned.
func TestVector_MisalignedBlockRejected(t *testing.T) {
	p, d := newTestDispatcher(t, pool.BucketConfig{BlockSize: 12, BlockCount: 8})

	first := New[int64](d)
	require.NoError(t, first.Push(1))
	require.Equal(t, 1, usedBlocks(p))

	second := New[int64](d)
	err := second.Push(2)
	require.ErrorIs(t, err, ErrAlignment)
	assert.Zero(t, second.Len())
	assert.Equal(t, 1, usedBlocks(p), "the misaligned run is returned to the pool")

	x, err := first.At(0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), x)

	// Types with 4-byte alignment fit the same blocks.
	third := New[int32](d)
	require.NoError(t, third.Push(3))
	assert.Equal(t, 2, usedBlocks(p))
}
