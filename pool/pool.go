package pool

import (
	"errors"
	"fmt"

	"github.com/joshuapare/poolkit/pool/bucket"
)

// Addr is an address inside some bucket arena of a pool.
type Addr = bucket.Addr

// ByteLen is a request size in bytes.
type ByteLen = bucket.ByteLen

// newBucket is a test hook for observing bucket construction.
var newBucket = bucket.New

// Pool is a fixed, ordered collection of buckets. Membership is set at
// construction and never changes; the pool owns its buckets and releases them
// on Close.
//
// NOT thread-safe. Dispatchers built over one pool share its occupancy state.
type Pool struct {
	layout  Layout
	buckets []*bucket.Bucket
}

// New builds one bucket per entry of layout, in order. If any bucket fails,
// the buckets already built are released and the error is returned.
func New(layout Layout) (*Pool, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	var opts []bucket.Option
	if layout.Mmap {
		opts = append(opts, bucket.WithMmap())
	}

	buckets := make([]*bucket.Bucket, 0, len(layout.Buckets))
	for i, cfg := range layout.Buckets {
		b, err := newBucket(cfg.BlockSize, cfg.BlockCount, opts...)
		if err != nil {
			err = fmt.Errorf("pool: bucket %d: %w", i, err)
			return nil, errors.Join(err, closeAll(buckets))
		}
		buckets = append(buckets, b)
	}

	return &Pool{layout: layout.Clone(), buckets: buckets}, nil
}

// closeAll closes every bucket once and joins the release errors.
func closeAll(buckets []*bucket.Bucket) error {
	var errs []error
	for _, b := range buckets {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Layout returns the layout the pool was built from.
func (p *Pool) Layout() Layout { return p.layout.Clone() }

// Len returns the number of buckets.
func (p *Pool) Len() int { return len(p.buckets) }

// Bucket returns the i-th bucket in pool order.
func (p *Pool) Bucket(i int) *bucket.Bucket { return p.buckets[i] }

// Buckets returns the buckets in pool order. The slice is a copy; the buckets
// are shared.
func (p *Pool) Buckets() []*bucket.Bucket {
	return append([]*bucket.Bucket(nil), p.buckets...)
}

// Owner returns the index of the first bucket whose arena contains addr, or
// -1 if none does.
func (p *Pool) Owner(addr Addr) int {
	for i, b := range p.buckets {
		if b.Belongs(addr) {
			return i
		}
	}
	return -1
}

// Bytes returns the n bytes of pool memory at addr, or nil if addr is not
// inside any bucket or the range runs past its arena.
func (p *Pool) Bytes(addr Addr, n ByteLen) []byte {
	i := p.Owner(addr)
	if i < 0 {
		return nil
	}
	return p.buckets[i].Bytes(addr, n)
}

// Stats returns per-bucket occupancy in pool order.
func (p *Pool) Stats() []bucket.Stats {
	out := make([]bucket.Stats, len(p.buckets))
	for i, b := range p.buckets {
		out[i] = b.Stats()
	}
	return out
}

// Close releases every bucket. Dispatchers over the pool must not be used
// afterwards; their allocations fail with ErrOutOfMemory.
func (p *Pool) Close() error {
	return closeAll(p.buckets)
}
