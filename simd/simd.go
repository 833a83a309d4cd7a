// Package simd provides fast byte and substring search for prefilters.
//
// Every function has a pure Go SWAR (SIMD Within A Register) implementation
// that scans eight bytes per step with uint64 arithmetic. On CPUs with
// vector units, single-byte search is handed to bytes.IndexByte, whose
// runtime implementation is vectorized. The choice is made once at package
// initialization from golang.org/x/sys/cpu feature flags.
package simd

import "golang.org/x/sys/cpu"

// hasVector reports whether the runtime's vectorized byte search is
// available and faster than SWAR on this CPU.
var hasVector = cpu.X86.HasAVX2 || cpu.X86.HasSSE42 || cpu.ARM64.HasASIMD

// HasVector reports which implementation Memchr dispatches to.
func HasVector() bool { return hasVector }
