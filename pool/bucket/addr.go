package bucket

import "unsafe"

// baseOf returns the address of the first byte of arena. Arena memory comes
// from the Go heap or an anonymous mapping and neither moves, so the address
// stays valid until the bucket is closed.
func baseOf(arena []byte) Addr {
	if len(arena) == 0 {
		return 0
	}
	return Addr(uintptr(unsafe.Pointer(unsafe.SliceData(arena))))
}

// AddrOf returns the address of the first byte of p. It is the inverse of
// Bytes for callers that hold a slice rather than an Addr.
func AddrOf(p []byte) Addr {
	return baseOf(p)
}
