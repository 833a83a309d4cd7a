package simd

import (
	"encoding/binary"
	"math/bits"
)

const (
	lo8 = 0x0101010101010101
	hi8 = 0x8080808080808080
)

// zeroBytes returns a word whose high bit is set in every byte of v that is
// zero (Hacker's Delight). Only the lowest set marker is exact, which is the
// one callers use.
func zeroBytes(v uint64) uint64 {
	return (v - lo8) & ^v & hi8
}

// firstMarker converts the marker word of a chunk into a byte index.
func firstMarker(m uint64) int {
	return bits.TrailingZeros64(m) / 8
}

// memchrSWAR scans for needle eight bytes at a time.
func memchrSWAR(haystack []byte, needle byte) int {
	n := len(haystack)
	mask := uint64(needle) * lo8
	i := 0
	for ; i+8 <= n; i += 8 {
		if m := zeroBytes(binary.LittleEndian.Uint64(haystack[i:]) ^ mask); m != 0 {
			return i + firstMarker(m)
		}
	}
	for ; i < n; i++ {
		if haystack[i] == needle {
			return i
		}
	}
	return -1
}

// memchr2SWAR checks both needles against each chunk.
func memchr2SWAR(haystack []byte, n1, n2 byte) int {
	n := len(haystack)
	m1, m2 := uint64(n1)*lo8, uint64(n2)*lo8
	i := 0
	for ; i+8 <= n; i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		if m := zeroBytes(chunk^m1) | zeroBytes(chunk^m2); m != 0 {
			return i + firstMarker(m)
		}
	}
	for ; i < n; i++ {
		if c := haystack[i]; c == n1 || c == n2 {
			return i
		}
	}
	return -1
}

// memchr3SWAR checks three needles against each chunk.
func memchr3SWAR(haystack []byte, n1, n2, n3 byte) int {
	n := len(haystack)
	m1, m2, m3 := uint64(n1)*lo8, uint64(n2)*lo8, uint64(n3)*lo8
	i := 0
	for ; i+8 <= n; i += 8 {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		if m := zeroBytes(chunk^m1) | zeroBytes(chunk^m2) | zeroBytes(chunk^m3); m != 0 {
			return i + firstMarker(m)
		}
	}
	for ; i < n; i++ {
		if c := haystack[i]; c == n1 || c == n2 || c == n3 {
			return i
		}
	}
	return -1
}

// memchrPairSWAR finds the first i with haystack[i] == b1 and
// haystack[i+offset] == b2.
func memchrPairSWAR(haystack []byte, b1, b2 byte, offset int) int {
	n := len(haystack)
	if offset < 0 || offset >= n {
		return -1
	}
	m1, m2 := uint64(b1)*lo8, uint64(b2)*lo8
	i := 0
	for ; i+8+offset <= n; i += 8 {
		z1 := zeroBytes(binary.LittleEndian.Uint64(haystack[i:]) ^ m1)
		if z1 == 0 {
			continue
		}
		z2 := zeroBytes(binary.LittleEndian.Uint64(haystack[i+offset:]) ^ m2)
		// zeroBytes may flag a byte above a true zero; recheck candidates.
		for m := z1 & z2; m != 0; m &= m - 1 {
			j := i + firstMarker(m)
			if haystack[j] == b1 && haystack[j+offset] == b2 {
				return j
			}
		}
	}
	for ; i+offset < n; i++ {
		if haystack[i] == b1 && haystack[i+offset] == b2 {
			return i
		}
	}
	return -1
}
