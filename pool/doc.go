// Package pool provides fixed-capacity block allocation over a set of
// bucket.Bucket size classes.
//
// # Overview
//
// A Pool is an ordered, fixed set of buckets built from a Layout. A
// Dispatcher fronts the pool with the two allocation entry points:
//
//   - Allocate(n): reserve n bytes, failing with ErrOutOfMemory
//   - Deallocate(addr, n): return the n bytes reserved at addr
//
// The pool never grows. When no bucket can satisfy a request the call fails
// and nothing is modified.
//
// # Bucket Selection
//
// For every request the dispatcher scores each bucket:
//
//	blocks = ceil(n / BlockSize)
//	waste  = blocks*BlockSize - n
//
// Buckets are tried by ascending waste, then by ascending block count, and
// the first bucket with a free run of enough blocks serves the request. A
// 10-byte request against 8- and 24-byte buckets goes to the 8-byte bucket
// (waste 6 vs 14); a 20-byte request ties on waste 4 and goes to the 24-byte
// bucket because it needs one block instead of three. Buckets that tie on
// both keys are tried in pool order.
//
// # Usage Example
//
//	p, err := pool.New(pool.LayoutSmall)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	d := pool.NewDispatcher(p)
//	addr, err := d.Allocate(40)
//	if err != nil {
//	    return err // errors.Is(err, pool.ErrOutOfMemory)
//	}
//	copy(d.Bytes(addr, 40), payload)
//	d.Deallocate(addr, 40)
//
// # Caller Contract
//
// Nothing records allocation sizes. Callers keep the byte length of every
// allocation and pass the same length to Deallocate. Deallocate ignores
// addresses that no bucket contains; Free performs the same operation but
// reports ErrForeignAddress or ErrNotAllocated when the contract is broken.
//
// # Sharing
//
// Dispatchers hold the pool by reference. Any number of dispatchers may be
// bound to one pool and see each other's allocations. The pool must outlive
// them all.
//
// # Thread Safety
//
// Pools and dispatchers are not thread-safe. Callers must synchronize access
// externally, for example with one mutex per pool.
//
// # Debugging
//
// Setting POOLKIT_LOG_ALLOC in the environment logs exhausted requests and
// foreign frees to stderr. WithLogger routes the same records elsewhere.
package pool
