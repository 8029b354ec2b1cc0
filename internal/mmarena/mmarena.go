// Package mmarena provides backing memory for pool arenas.
//
// Two sources are supported: the Go heap and anonymous private mappings.
// Mapped arenas live outside the garbage-collected heap, never move, and are
// returned to the operating system by the release function. Heap arenas are
// used on platforms without an anonymous mapping primitive.
package mmarena

import (
	"errors"
	"fmt"
)

// ErrSize indicates a non-positive or unrepresentable arena size.
var ErrSize = errors.New("mmarena: invalid arena size")

// Release returns an arena's memory. It is safe to call more than once.
type Release func() error

func noRelease() error { return nil }

// Heap returns a zeroed arena of size bytes allocated on the Go heap.
func Heap(size int) ([]byte, Release, error) {
	if size <= 0 {
		return nil, noRelease, fmt.Errorf("%w: %d", ErrSize, size)
	}
	return make([]byte, size), noRelease, nil
}

// Map returns a zeroed arena of size bytes backed by an anonymous mapping.
// Platforms without anonymous mappings fall back to Heap.
func Map(size int) ([]byte, Release, error) {
	if size <= 0 {
		return nil, noRelease, fmt.Errorf("%w: %d", ErrSize, size)
	}
	return mapAnon(size)
}
