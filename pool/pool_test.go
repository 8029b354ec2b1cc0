package pool

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/poolkit/pool/bucket"
)

// recordBuckets swaps the bucket constructor for one that remembers every
// bucket it builds, restoring it when the test ends.
func recordBuckets(t *testing.T) *[]*bucket.Bucket {
	t.Helper()
	var built []*bucket.Bucket
	orig := newBucket
	newBucket = func(size, count int, opts ...bucket.Option) (*bucket.Bucket, error) {
		b, err := orig(size, count, opts...)
		if err == nil {
			built = append(built, b)
		}
		return b, err
	}
	t.Cleanup(func() { newBucket = orig })
	return &built
}

func TestNew_BuildsBucketsInOrder(t *testing.T) {
	p := newTestPool(t,
		BucketConfig{BlockSize: 24, BlockCount: 10},
		BucketConfig{BlockSize: 8, BlockCount: 20},
	)

	require.Equal(t, 2, p.Len())
	assert.Equal(t, 24, p.Bucket(0).BlockSize())
	assert.Equal(t, 10, p.Bucket(0).BlockCount())
	assert.Equal(t, 8, p.Bucket(1).BlockSize())
	assert.Equal(t, 20, p.Bucket(1).BlockCount())
	assert.Equal(t, "test", p.Layout().Name)

	stats := p.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, 240, stats[0].CapacityBytes)
	assert.Equal(t, 160, stats[1].CapacityBytes)
}

// TestNew_PartialFailureReleasesBuilt fails on the third bucket and checks the
// first two were closed.
func TestNew_PartialFailureReleasesBuilt(t *testing.T) {
	built := recordBuckets(t)

	p, err := New(Layout{Buckets: []BucketConfig{
		{BlockSize: 8, BlockCount: 16},
		{BlockSize: 24, BlockCount: 16},
		{BlockSize: math.MaxInt / 2, BlockCount: 4},
	}})
	require.Error(t, err)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, bucket.ErrBadConfig))
	assert.Contains(t, err.Error(), "bucket 2")

	require.Len(t, *built, 2)
	for i, b := range *built {
		assert.True(t, b.Closed(), "bucket %d leaked", i)
	}
}

func TestNew_InvalidLayout(t *testing.T) {
	built := recordBuckets(t)

	_, err := New(Layout{})
	require.ErrorIs(t, err, ErrBadLayout)

	_, err = New(Layout{Buckets: []BucketConfig{{BlockSize: 8, BlockCount: 8}, {BlockSize: 0, BlockCount: 8}}})
	require.ErrorIs(t, err, ErrBadLayout)

	assert.Empty(t, *built, "validation happens before any bucket is built")
}

func TestNew_Mmap(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	p, err := New(Layout{Mmap: true, Buckets: []BucketConfig{{BlockSize: 8, BlockCount: 4096}}})
	require.NoError(t, err)
	defer p.Close()

	assert.True(t, p.Bucket(0).Mapped())
	d := NewDispatcher(p)
	addr, err := d.Allocate(64)
	require.NoError(t, err)
	copy(d.Bytes(addr, 64), "mapped")
	assert.Equal(t, "mapped", string(d.Bytes(addr, 6)))
}

func TestClose_ReleasesEveryBucket(t *testing.T) {
	p, err := New(LayoutSmall)
	require.NoError(t, err)
	d := NewDispatcher(p)
	addr, err := d.Allocate(8)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	for i, b := range p.Buckets() {
		assert.True(t, b.Closed(), "bucket %d", i)
	}
	assert.Equal(t, -1, p.Owner(addr))

	_, err = d.Allocate(8)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.NoError(t, p.Close(), "second close is a no-op")
}

func TestOwner(t *testing.T) {
	p := newTestPool(t,
		BucketConfig{BlockSize: 8, BlockCount: 4},
		BucketConfig{BlockSize: 16, BlockCount: 4},
	)
	for i, b := range p.Buckets() {
		assert.Equal(t, i, p.Owner(b.Base()))
		assert.Equal(t, i, p.Owner(b.Base()+Addr(b.Capacity())-1))
	}
	assert.Equal(t, -1, p.Owner(0))
}

func TestBuckets_ReturnsCopy(t *testing.T) {
	p := newTestPool(t, BucketConfig{BlockSize: 8, BlockCount: 4})
	bs := p.Buckets()
	bs[0] = nil
	assert.NotNil(t, p.Bucket(0))
}
