// Package conv provides checked integer conversions.
//
// The engine sizes its tables from pattern-derived counts. A count that does
// not fit the narrower type means an internal limit was bypassed, so these
// helpers panic instead of wrapping silently.
package conv

import "math"

// IntToUint32 converts n to uint32, panicking if it is out of range.
func IntToUint32(n int) uint32 {
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("conv: int out of uint32 range")
	}
	return uint32(n)
}
