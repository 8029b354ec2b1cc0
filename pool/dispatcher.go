package pool

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/joshuapare/poolkit/pool/bucket"
)

// Runtime debug flag for allocation logging - controlled by POOLKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("POOLKIT_LOG_ALLOC") != ""

// score ranks one bucket for one request.
type score struct {
	index  int // bucket position in the pool
	blocks int // blocks needed to cover the request
	waste  int // bytes allocated but not requested
}

// compareScores orders by ascending waste, then ascending block count.
func compareScores(a, b score) int {
	if c := cmp.Compare(a.waste, b.waste); c != 0 {
		return c
	}
	return cmp.Compare(a.blocks, b.blocks)
}

// Stats holds dispatcher counters.
type Stats struct {
	AllocCalls int `json:"alloc_calls"`

	// AllocFailures counts ErrOutOfMemory results.
	AllocFailures int `json:"alloc_failures"`

	// Fallbacks counts allocations served by a bucket other than the
	// best-scoring one.
	Fallbacks int `json:"fallbacks"`

	FreeCalls int `json:"free_calls"`

	// FreeMisses counts frees of addresses no bucket owns.
	FreeMisses int `json:"free_misses"`

	// Byte totals cover successful allocations only.
	BytesRequested int64 `json:"bytes_requested"`
	BytesWasted    int64 `json:"bytes_wasted"`
	BytesFreed     int64 `json:"bytes_freed"`
}

// Dispatcher routes requests to the bucket of a pool that wastes the fewest
// bytes. It holds a non-owning reference to the pool: several dispatchers may
// share one pool, and the pool must outlive all of them.
//
// NOT thread-safe.
type Dispatcher struct {
	pool   *Pool
	log    *slog.Logger
	ranked []score // reused between requests
	stats  Stats
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger sets the logger used for allocation diagnostics.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// NewDispatcher binds a dispatcher to p.
func NewDispatcher(p *Pool, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		pool:   p,
		log:    defaultLogger(),
		ranked: make([]score, 0, p.Len()),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func defaultLogger() *slog.Logger {
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Pool returns the pool the dispatcher is bound to.
func (d *Dispatcher) Pool() *Pool { return d.pool }

// rank scores every bucket for an n-byte request and sorts the scores
// best first. Full ties keep pool order.
func (d *Dispatcher) rank(n ByteLen) []score {
	d.ranked = d.ranked[:0]
	for i, b := range d.pool.buckets {
		blocks := bucket.Blocks(n, b.BlockSize())
		d.ranked = append(d.ranked, score{
			index:  i,
			blocks: blocks,
			waste:  blocks*b.BlockSize() - int(n),
		})
	}
	slices.SortStableFunc(d.ranked, compareScores)
	return d.ranked
}

// Allocate reserves n bytes from the bucket with the least waste that has
// room, trying the others in ranking order when it does not. It fails with
// ErrInvalidSize for n <= 0 and ErrOutOfMemory when every bucket refuses; in
// both cases no bucket is modified.
func (d *Dispatcher) Allocate(n ByteLen) (Addr, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	d.stats.AllocCalls++

	for i, s := range d.rank(n) {
		addr, ok := d.pool.buckets[s.index].Allocate(n)
		if !ok {
			continue
		}
		if i > 0 {
			d.stats.Fallbacks++
		}
		d.stats.BytesRequested += int64(n)
		d.stats.BytesWasted += int64(s.waste)
		return addr, nil
	}

	d.stats.AllocFailures++
	d.log.Debug("pool exhausted", "bytes", int(n), "buckets", d.pool.Len())
	return 0, fmt.Errorf("%w: %d bytes", ErrOutOfMemory, n)
}

// Deallocate returns the run at addr to the first bucket that contains it. n
// must equal the length passed to the Allocate call that returned addr. An
// address no bucket contains is ignored.
func (d *Dispatcher) Deallocate(addr Addr, n ByteLen) {
	d.stats.FreeCalls++
	for _, b := range d.pool.buckets {
		if b.Belongs(addr) {
			b.Deallocate(addr, n)
			d.stats.BytesFreed += int64(max(n, 0))
			return
		}
	}
	d.stats.FreeMisses++
	d.log.Debug("free of foreign address", "addr", fmt.Sprintf("0x%X", uintptr(addr)), "bytes", int(n))
}

// Free is Deallocate with the caller contract checked: addr must be owned by
// a bucket and every block covering n bytes from it must be in use. On error
// nothing is modified.
func (d *Dispatcher) Free(addr Addr, n ByteLen) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	i := d.pool.Owner(addr)
	if i < 0 {
		d.stats.FreeMisses++
		return fmt.Errorf("%w: 0x%X", ErrForeignAddress, uintptr(addr))
	}
	if !d.pool.buckets[i].Owns(addr, n) {
		return fmt.Errorf("%w: 0x%X (%d bytes) in bucket %d", ErrNotAllocated, uintptr(addr), n, i)
	}
	d.Deallocate(addr, n)
	return nil
}

// Bytes returns the n bytes of pool memory at addr.
func (d *Dispatcher) Bytes(addr Addr, n ByteLen) []byte {
	return d.pool.Bytes(addr, n)
}

// Stats returns the dispatcher's counters. Counters are per dispatcher even
// when the pool is shared.
func (d *Dispatcher) Stats() Stats { return d.stats }
