package simd

import "bytes"

// Memmem returns the index of the first instance of needle in haystack,
// or -1 if needle is not present in haystack.
//
// Candidates come from MemchrPair on the two rarest bytes of the needle
// (ranked by ByteRank) and are verified with bytes.Equal.
//
// Example:
//
//	pos := simd.Memmem([]byte("hello world"), []byte("world"))
//	// pos == 6
func Memmem(haystack, needle []byte) int {
	n, m := len(haystack), len(needle)
	switch {
	case m == 0:
		return 0
	case m > n:
		return -1
	case m == 1:
		return Memchr(haystack, needle[0])
	}

	rare := SelectRareBytes(needle)
	// Order the pair so the offset is positive.
	b1, i1, b2, i2 := rare.Byte1, rare.Index1, rare.Byte2, rare.Index2
	if i1 > i2 {
		b1, i1, b2, i2 = b2, i2, b1, i1
	}

	// A candidate at c means the needle starts at c-i1, so c ranges over
	// [i1, n-m+i1].
	last := n - m + i1
	for c := i1; c <= last; {
		j := MemchrPair(haystack[c:last+1+(i2-i1)], b1, b2, i2-i1)
		if j < 0 {
			return -1
		}
		c += j
		if start := c - i1; bytes.Equal(haystack[start:start+m], needle) {
			return start
		}
		c++
	}
	return -1
}
