package pool

import "errors"

var (
	// ErrOutOfMemory indicates that no bucket in the pool could satisfy a request.
	ErrOutOfMemory = errors.New("pool: out of memory")

	// ErrInvalidSize indicates a zero or negative request length.
	ErrInvalidSize = errors.New("pool: request length must be positive")

	// ErrBadLayout indicates a pool layout that cannot be built.
	ErrBadLayout = errors.New("pool: bad layout")

	// ErrForeignAddress indicates a free of an address no bucket owns.
	ErrForeignAddress = errors.New("pool: address not owned by any bucket")

	// ErrNotAllocated indicates a free whose blocks are not all marked in use,
	// typically a double free or a length that differs from the allocation.
	ErrNotAllocated = errors.New("pool: blocks not allocated")
)
