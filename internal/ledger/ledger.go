// Package ledger implements the occupancy bitmap used by pool buckets.
//
// A Ledger tracks n blocks with one bit each, packed eight to a byte. Block k
// lives in byte k/8 at bit 7-(k%8) counted from the least significant bit, so
// the bitmap reads left to right as a single bit sequence: byte 0 first, most
// significant bit first. A set bit means the block is in use.
//
// Bits past the last real block (the padding of the final byte) are never set
// and never reported as free.
//
// Ledgers are not safe for concurrent use.
package ledger

import "math/bits"

// Ledger is a fixed-length bitmap of block occupancy.
type Ledger struct {
	bits []byte
	n    int
}

// Size returns the number of bytes needed to hold n bits.
func Size(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + 7) >> 3
}

// New returns a zeroed ledger for n blocks.
func New(n int) *Ledger {
	if n < 0 {
		n = 0
	}
	return &Ledger{bits: make([]byte, Size(n)), n: n}
}

// Len returns the number of blocks tracked.
func (l *Ledger) Len() int { return l.n }

// Bytes exposes the packed bitmap. Callers must not modify it.
func (l *Ledger) Bytes() []byte { return l.bits }

// Test reports whether block i is in use.
func (l *Ledger) Test(i int) bool {
	if i < 0 || i >= l.n {
		return false
	}
	return l.bits[i>>3]&(0x80>>uint(i&7)) != 0
}

// FindRun returns the lowest index i such that blocks [i, i+n) are all free,
// or -1 when no such run exists.
func (l *Ledger) FindRun(n int) int {
	if n <= 0 || n > l.n {
		return -1
	}

	run := 0 // free blocks immediately before k
	for k := 0; k < l.n; {
		b := l.bits[k>>3]

		// Whole-byte fast path, only when the byte holds no padding.
		if k&7 == 0 && k+8 <= l.n {
			switch b {
			case 0xFF:
				run = 0
				k += 8
				continue
			case 0x00:
				if run+8 >= n {
					return k - run
				}
				run += 8
				k += 8
				continue
			}
		}

		if b&(0x80>>uint(k&7)) != 0 {
			run = 0
		} else {
			run++
			if run == n {
				return k - n + 1
			}
		}
		k++
	}
	return -1
}

// Set marks blocks [i, i+n) as used.
func (l *Ledger) Set(i, n int) { l.apply(i, n, true) }

// Clear marks blocks [i, i+n) as free.
func (l *Ledger) Clear(i, n int) { l.apply(i, n, false) }

// apply sets or clears a bit range one byte at a time. The range is clamped
// to [0, Len()) so padding bits stay zero whatever the caller passes.
func (l *Ledger) apply(i, n int, set bool) {
	if i < 0 {
		n += i
		i = 0
	}
	end := min(i+n, l.n)
	for i < end {
		bit := i & 7
		span := min(8-bit, end-i)
		mask := rangeMask(bit, span)
		if set {
			l.bits[i>>3] |= mask
		} else {
			l.bits[i>>3] &^= mask
		}
		i += span
	}
}

// rangeMask returns a byte with span bits set starting at bit position bit,
// counting from the most significant bit.
func rangeMask(bit, span int) byte {
	return byte(0xFF)>>uint(bit) &^ (byte(0xFF) >> uint(bit+span))
}

// AllSet reports whether every block in [i, i+n) is in use. Ranges that reach
// outside the ledger report false.
func (l *Ledger) AllSet(i, n int) bool {
	if n <= 0 || i < 0 || i+n > l.n {
		return false
	}
	end := i + n
	for i < end {
		bit := i & 7
		span := min(8-bit, end-i)
		mask := rangeMask(bit, span)
		if l.bits[i>>3]&mask != mask {
			return false
		}
		i += span
	}
	return true
}

// Count returns the number of blocks in use.
func (l *Ledger) Count() int {
	c := 0
	for _, b := range l.bits {
		c += bits.OnesCount8(b)
	}
	return c
}

// LongestFreeRun returns the length of the longest run of free blocks.
func (l *Ledger) LongestFreeRun() int {
	best, run := 0, 0
	for k := 0; k < l.n; k++ {
		if l.bits[k>>3]&(0x80>>uint(k&7)) != 0 {
			run = 0
			continue
		}
		run++
		best = max(best, run)
	}
	return best
}

// Reset marks every block free.
func (l *Ledger) Reset() {
	clear(l.bits)
}
