// Package vec provides a growable vector whose storage comes from a pool
// dispatcher.
//
// A Vector follows the pool caller contract: it remembers the byte length of
// its current allocation and hands the same length back when it frees it.
// Elements are restricted to pointer-free scalar types because pool memory is
// not scanned by the garbage collector.
package vec

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/joshuapare/poolkit/pool"
)

var (
	// ErrIndex indicates an element index outside [0, Len()).
	ErrIndex = errors.New("vec: index out of range")

	// ErrAlignment indicates the pool returned an address not aligned for the
	// element type, which happens when a block size is not a multiple of the
	// element alignment.
	ErrAlignment = errors.New("vec: misaligned allocation")
)

// Scalar lists the element types a Vector may hold.
type Scalar interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Allocator is the pair of entry points a Vector needs. *pool.Dispatcher
// implements it.
type Allocator interface {
	Allocate(n pool.ByteLen) (pool.Addr, error)
	Deallocate(addr pool.Addr, n pool.ByteLen)
	Bytes(addr pool.Addr, n pool.ByteLen) []byte
}

// Vector is a growable array of T stored in pool memory.
//
// NOT thread-safe.
type Vector[T Scalar] struct {
	alloc Allocator
	addr  pool.Addr
	size  pool.ByteLen // byte length of the current allocation
	data  []T
}

// New returns an empty vector that allocates from a.
func New[T Scalar](a Allocator) *Vector[T] {
	return &Vector[T]{alloc: a}
}

func elemSize[T Scalar]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func elemAlign[T Scalar]() uintptr {
	var zero T
	return unsafe.Alignof(zero)
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return len(v.data) }

// Cap returns the number of elements the current allocation holds.
func (v *Vector[T]) Cap() int { return cap(v.data) }

// At returns element i.
func (v *Vector[T]) At(i int) (T, error) {
	if i < 0 || i >= len(v.data) {
		var zero T
		return zero, fmt.Errorf("%w: %d (len %d)", ErrIndex, i, len(v.data))
	}
	return v.data[i], nil
}

// Set overwrites element i.
func (v *Vector[T]) Set(i int, x T) error {
	if i < 0 || i >= len(v.data) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndex, i, len(v.data))
	}
	v.data[i] = x
	return nil
}

// Slice returns the elements as a slice backed by pool memory. It is
// invalidated by the next growth or Release.
func (v *Vector[T]) Slice() []T { return v.data }

// Push appends x, doubling the allocation when it is full. On
// pool.ErrOutOfMemory the vector is unchanged.
func (v *Vector[T]) Push(x T) error {
	if len(v.data) == cap(v.data) {
		if err := v.Reserve(max(1, 2*cap(v.data))); err != nil {
			return err
		}
	}
	v.data = append(v.data, x)
	return nil
}

// Reserve grows the allocation to hold at least n elements. A new allocation
// that is not aligned for T is returned to the pool and reported as
// ErrAlignment; the vector is unchanged.
func (v *Vector[T]) Reserve(n int) error {
	if n <= cap(v.data) {
		return nil
	}
	size := pool.ByteLen(n * elemSize[T]())
	addr, err := v.alloc.Allocate(size)
	if err != nil {
		return fmt.Errorf("vec: reserve %d elements: %w", n, err)
	}
	if align := elemAlign[T](); uintptr(addr)%align != 0 {
		v.alloc.Deallocate(addr, size)
		return fmt.Errorf("%w: 0x%X for %d-byte alignment", ErrAlignment, uintptr(addr), align)
	}
	data := unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(v.alloc.Bytes(addr, size)))), n)
	data = data[:len(v.data)]
	copy(data, v.data)

	v.release()
	v.addr, v.size, v.data = addr, size, data
	return nil
}

// Release returns the storage to the pool and empties the vector.
func (v *Vector[T]) Release() {
	v.release()
	v.addr, v.size, v.data = 0, 0, nil
}

func (v *Vector[T]) release() {
	if v.size > 0 {
		v.alloc.Deallocate(v.addr, v.size)
	}
}
