//go:build !unix && !windows

package mmarena

// mapAnon falls back to the Go heap when anonymous mappings are unavailable.
func mapAnon(size int) ([]byte, Release, error) {
	return Heap(size)
}
