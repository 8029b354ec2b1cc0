// Package bucket implements a fixed-size block pool with bitmap occupancy.
//
// # Overview
//
// A Bucket owns one arena of BlockCount blocks, each BlockSize bytes, and a
// ledger holding one bit per block (1 = in use). Allocation is first-fit over
// contiguous runs: a request for n bytes needs ceil(n/BlockSize) blocks and
// takes the lowest-indexed run of that many free blocks.
//
//	b, err := bucket.New(8, 1024)
//	if err != nil {
//	    return err
//	}
//	defer b.Close()
//
//	addr, ok := b.Allocate(40) // 5 blocks
//	if !ok {
//	    // bucket exhausted for this size; try another bucket
//	}
//	buf := b.Bytes(addr, 40)
//	// ...
//	b.Deallocate(addr, 40)
//
// # Caller Contract
//
// The bucket keeps no allocation table. Deallocate must receive the address
// returned by Allocate and the same ByteLen that was requested. A mismatched
// length or a double free silently corrupts occupancy; Owns can be used to
// assert the contract in debug builds.
//
// # Memory
//
// Arenas come from the Go heap by default, or from an anonymous mapping with
// WithMmap. Arena memory is not scanned by the garbage collector: never store
// Go pointers in it. Close releases the arena and ledger exactly once.
//
// # Thread Safety
//
// Bucket instances are not thread-safe. Concurrent Allocate or Deallocate
// calls on one bucket race on the ledger.
package bucket
