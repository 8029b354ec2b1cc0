//go:build windows

package mmarena

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mapAnon reserves and commits size bytes with VirtualAlloc. Committed pages
// are zero-filled.
func mapAnon(size int) ([]byte, Release, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, noRelease, fmt.Errorf("mmarena: VirtualAlloc %d bytes: %w", size, err)
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	release := func() error {
		if addr == 0 {
			return nil
		}
		err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
		addr = 0
		return err
	}
	return data, release, nil
}
