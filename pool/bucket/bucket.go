package bucket

import (
	"errors"
	"fmt"
	"math"

	"github.com/joshuapare/poolkit/internal/ledger"
	"github.com/joshuapare/poolkit/internal/mmarena"
)

// Addr is an address inside a bucket arena.
type Addr uintptr

// ByteLen is a request size in bytes. Allocate and Deallocate both take a
// ByteLen so element counts cannot be passed by mistake.
type ByteLen int

// ErrBadConfig indicates a non-positive or overflowing block size or count.
var ErrBadConfig = errors.New("bucket: block size and count must be positive")

// noCopy lets `go vet` flag copies of a Bucket. A copied Bucket would alias
// the arena and ledger and release them twice.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Bucket is one block-size class: an arena of BlockCount blocks of BlockSize
// bytes and a ledger with one occupancy bit per block.
//
// NOT thread-safe. Callers must synchronize access externally.
type Bucket struct {
	_ noCopy

	blockSize  int
	blockCount int

	arena   []byte
	base    Addr
	ledger  *ledger.Ledger
	release mmarena.Release
	mapped  bool
}

// Option configures a Bucket at construction.
type Option func(*options)

type options struct {
	mmap bool
}

// WithMmap backs the arena with an anonymous mapping instead of the Go heap.
func WithMmap() Option {
	return func(o *options) { o.mmap = true }
}

// New creates a bucket of blockCount blocks of blockSize bytes each. Both the
// arena and the ledger start zeroed.
func New(blockSize, blockCount int, opts ...Option) (*Bucket, error) {
	if blockSize <= 0 || blockCount <= 0 {
		return nil, fmt.Errorf("%w: size=%d count=%d", ErrBadConfig, blockSize, blockCount)
	}
	if blockCount > math.MaxInt/blockSize {
		return nil, fmt.Errorf("%w: %d x %d overflows", ErrBadConfig, blockSize, blockCount)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	source := mmarena.Heap
	if o.mmap {
		source = mmarena.Map
	}
	arena, release, err := source(blockSize * blockCount)
	if err != nil {
		return nil, fmt.Errorf("bucket %dx%d: %w", blockSize, blockCount, err)
	}

	return &Bucket{
		blockSize:  blockSize,
		blockCount: blockCount,
		arena:      arena,
		base:       baseOf(arena),
		ledger:     ledger.New(blockCount),
		release:    release,
		mapped:     o.mmap,
	}, nil
}

// BlockSize returns the number of bytes per block.
func (b *Bucket) BlockSize() int { return b.blockSize }

// BlockCount returns the number of blocks in the arena.
func (b *Bucket) BlockCount() int { return b.blockCount }

// Capacity returns the arena size in bytes.
func (b *Bucket) Capacity() int { return b.blockSize * b.blockCount }

// Base returns the address of the first block. It is zero after Close.
func (b *Bucket) Base() Addr { return b.base }

// Mapped reports whether the arena lives in an anonymous mapping.
func (b *Bucket) Mapped() bool { return b.mapped }

// Closed reports whether Close has released the bucket's memory.
func (b *Bucket) Closed() bool { return b.arena == nil }

// Blocks returns how many blocks of blockSize bytes cover n bytes.
func Blocks(n ByteLen, blockSize int) int {
	if n <= 0 {
		return 0
	}
	return 1 + (int(n)-1)/blockSize
}

// Belongs reports whether addr falls inside the arena. It does not check
// block alignment.
func (b *Bucket) Belongs(addr Addr) bool {
	if b.arena == nil {
		return false
	}
	return addr >= b.base && addr < b.base+Addr(len(b.arena))
}

// Allocate reserves the lowest run of free blocks covering n bytes and
// returns its address. It returns false when n is not positive or no run is
// long enough; the ledger is unchanged in that case.
func (b *Bucket) Allocate(n ByteLen) (Addr, bool) {
	if n <= 0 || b.arena == nil {
		return 0, false
	}
	blocks := Blocks(n, b.blockSize)
	index := b.ledger.FindRun(blocks)
	if index < 0 {
		return 0, false
	}
	b.ledger.Set(index, blocks)
	return b.base + Addr(index*b.blockSize), true
}

// Deallocate frees the blocks covering n bytes starting at addr. The caller
// must pass an address returned by Allocate together with the same n; nothing
// checks that the blocks were in use.
func (b *Bucket) Deallocate(addr Addr, n ByteLen) {
	if n <= 0 || !b.Belongs(addr) {
		return
	}
	index := int(addr-b.base) / b.blockSize
	b.ledger.Clear(index, Blocks(n, b.blockSize))
}

// Owns reports whether addr is the start of a block and every block covering
// n bytes from there is marked in use.
func (b *Bucket) Owns(addr Addr, n ByteLen) bool {
	if n <= 0 || !b.Belongs(addr) {
		return false
	}
	off := int(addr - b.base)
	if off%b.blockSize != 0 {
		return false
	}
	return b.ledger.AllSet(off/b.blockSize, Blocks(n, b.blockSize))
}

// Bytes returns the n bytes of arena memory starting at addr, or nil when the
// range is not inside the arena.
func (b *Bucket) Bytes(addr Addr, n ByteLen) []byte {
	if n <= 0 || !b.Belongs(addr) {
		return nil
	}
	off := int(addr - b.base)
	if off+int(n) > len(b.arena) {
		return nil
	}
	return b.arena[off : off+int(n) : off+int(n)]
}

// Index returns the block index addr falls in, or -1 if it is foreign.
func (b *Bucket) Index(addr Addr) int {
	if !b.Belongs(addr) {
		return -1
	}
	return int(addr-b.base) / b.blockSize
}

// InUse reports whether block i is marked in use.
func (b *Bucket) InUse(i int) bool { return b.ledger.Test(i) }

// Ledger returns a copy of the packed occupancy bitmap.
func (b *Bucket) Ledger() []byte {
	return append([]byte(nil), b.ledger.Bytes()...)
}

// Close releases the arena and the ledger. Later calls are no-ops, and the
// bucket refuses further allocations.
func (b *Bucket) Close() error {
	if b.arena == nil {
		return nil
	}
	err := b.release()
	b.arena = nil
	b.base = 0
	b.ledger = ledger.New(0)
	if err != nil {
		return fmt.Errorf("bucket %dx%d: release: %w", b.blockSize, b.blockCount, err)
	}
	return nil
}
