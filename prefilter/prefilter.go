// Package prefilter provides fast candidate filtering for regex search using
// extracted literal sequences.
//
// A prefilter is used to quickly skip positions in the haystack where no
// match can start. The automaton only runs from candidate positions.
//
// The package selects a strategy based on the extracted literals:
//   - Single byte → Memchr
//   - Two or three single bytes → Memchr2 / Memchr3
//   - Single substring → Memmem
//   - Anything else → Aho-Corasick over the literals cut to equal length
//
// Example usage:
//
//	tree := syntax.NewTree(syntax.Limits{})
//	parsed, _ := syntax.Parse("hello|world", syntax.Extended, tree)
//	prefixes := literal.New(literal.DefaultConfig()).ExtractPrefixes(parsed.Root)
//
//	pf := prefilter.New(prefixes)
//	pos := pf.Find([]byte("foo hello bar world baz"), 0)
//	// pos == 4 (position of "hello")
package prefilter

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"
	"github.com/coregx/tre/literal"
	"github.com/coregx/tre/simd"
)

// Prefilter is used to quickly find candidate match positions before running
// the full regex engine.
//
// A candidate is a position where one of the literals starts. It does not
// guarantee a match; the automaton verifies it.
type Prefilter interface {
	// Find returns the index of the first candidate at or after start, or
	// -1 if there is none.
	Find(haystack []byte, start int) int

	// IsComplete returns true if every literal is a whole match, so finding
	// one proves a match without verification.
	IsComplete() bool

	// HeapBytes returns the number of bytes of heap memory used by this
	// prefilter, for memory budgeting.
	HeapBytes() int

	// String names the strategy, for debugging and tests.
	String() string
}

// replacementChar is how invalid input bytes decode. A literal containing it
// would have to match bytes the literal does not contain.
var replacementChar = []byte(string(utf8.RuneError))

// New builds the best prefilter for the given prefix literals.
//
// It returns nil when no prefilter can be built: the sequence is empty,
// some match may begin with the empty string, or a literal contains U+FFFD.
// seq is not modified.
func New(seq *literal.Seq) Prefilter {
	if !seq.AllNonEmpty() {
		return nil
	}

	for i := 0; i < seq.Len(); i++ {
		if bytes.Contains(seq.Get(i).Bytes, replacementChar) {
			return nil
		}
	}
	work := seq.Clone()
	work.Minimize()

	if work.Len() == 1 {
		lit := work.Get(0)
		if len(lit.Bytes) == 1 {
			return newMemchrPrefilter(lit.Bytes, lit.Complete)
		}
		return newMemmemPrefilter(lit.Bytes, lit.Complete)
	}

	// Cut every literal to the shortest length. Equal lengths make the
	// earliest hit of the automaton the leftmost start.
	n := work.MinLen()
	complete := true
	var cut [][]byte
	for i := 0; i < work.Len(); i++ {
		lit := work.Get(i)
		complete = complete && lit.Complete && len(lit.Bytes) == n
		b := lit.Bytes[:n]
		if !containsBytes(cut, b) {
			cut = append(cut, b)
		}
	}

	switch {
	case n == 1 && len(cut) <= 3:
		needles := make([]byte, len(cut))
		for i, b := range cut {
			needles[i] = b[0]
		}
		return newMemchrPrefilter(needles, complete)
	case len(cut) == 1:
		return newMemmemPrefilter(cut[0], complete)
	}
	return newAhoCorasickPrefilter(cut, complete)
}

func containsBytes(set [][]byte, b []byte) bool {
	for _, s := range set {
		if bytes.Equal(s, b) {
			return true
		}
	}
	return false
}

// memchrPrefilter searches for one of up to three bytes.
type memchrPrefilter struct {
	needles  []byte
	complete bool
}

func newMemchrPrefilter(needles []byte, complete bool) Prefilter {
	return &memchrPrefilter{
		needles:  bytes.Clone(needles),
		complete: complete,
	}
}

// Find implements Prefilter.Find using simd.Memchr, Memchr2 or Memchr3.
func (p *memchrPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	h := haystack[start:]
	var idx int
	switch len(p.needles) {
	case 1:
		idx = simd.Memchr(h, p.needles[0])
	case 2:
		idx = simd.Memchr2(h, p.needles[0], p.needles[1])
	default:
		idx = simd.Memchr3(h, p.needles[0], p.needles[1], p.needles[2])
	}
	if idx == -1 {
		return -1
	}
	return start + idx
}

// IsComplete implements Prefilter.IsComplete.
func (p *memchrPrefilter) IsComplete() bool { return p.complete }

// HeapBytes implements Prefilter.HeapBytes.
func (p *memchrPrefilter) HeapBytes() int { return len(p.needles) }

func (p *memchrPrefilter) String() string {
	return fmt.Sprintf("memchr%q", p.needles)
}

// memmemPrefilter searches for a single substring.
type memmemPrefilter struct {
	needle   []byte
	complete bool
}

func newMemmemPrefilter(needle []byte, complete bool) Prefilter {
	return &memmemPrefilter{
		needle:   bytes.Clone(needle),
		complete: complete,
	}
}

// Find implements Prefilter.Find using simd.Memmem.
func (p *memmemPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	idx := simd.Memmem(haystack[start:], p.needle)
	if idx == -1 {
		return -1
	}
	return start + idx
}

// IsComplete implements Prefilter.IsComplete.
func (p *memmemPrefilter) IsComplete() bool { return p.complete }

// HeapBytes implements Prefilter.HeapBytes.
func (p *memmemPrefilter) HeapBytes() int { return len(p.needle) }

func (p *memmemPrefilter) String() string {
	return fmt.Sprintf("memmem%q", p.needle)
}

// ahoCorasickPrefilter searches for many literals of equal length at once.
type ahoCorasickPrefilter struct {
	auto     *ahocorasick.Automaton
	patterns int
	bytes    int
	complete bool
}

func newAhoCorasickPrefilter(patterns [][]byte, complete bool) Prefilter {
	builder := ahocorasick.NewBuilder()
	total := 0
	for _, p := range patterns {
		builder.AddPattern(p)
		total += len(p)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &ahoCorasickPrefilter{
		auto:     auto,
		patterns: len(patterns),
		bytes:    total,
		complete: complete,
	}
}

// Find implements Prefilter.Find using the Aho-Corasick automaton.
func (p *ahoCorasickPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start >= len(haystack) {
		return -1
	}
	m := p.auto.Find(haystack, start)
	if m == nil {
		return -1
	}
	return m.Start
}

// IsComplete implements Prefilter.IsComplete.
func (p *ahoCorasickPrefilter) IsComplete() bool { return p.complete }

// HeapBytes implements Prefilter.HeapBytes. It counts the pattern bytes;
// the automaton's own tables are not visible.
func (p *ahoCorasickPrefilter) HeapBytes() int { return p.bytes }

func (p *ahoCorasickPrefilter) String() string {
	return fmt.Sprintf("ahocorasick[%d]", p.patterns)
}
