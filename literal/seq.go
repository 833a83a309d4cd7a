// Package literal extracts the byte strings that every match of a pattern
// must start with. Prefilters use them to skip input where no match can
// begin.
//
// A Seq is a set of alternative Literals. A Literal is Complete when a match
// of the pattern may consist of exactly those bytes; otherwise it is only a
// prefix of the match.
package literal

import (
	"bytes"
	"cmp"
	"slices"
	"strconv"
)

// Literal is one byte string a match can start with.
type Literal struct {
	Bytes    []byte
	Complete bool
}

// NewLiteral returns a Literal over b. b is not copied.
func NewLiteral(b []byte, complete bool) Literal {
	return Literal{Bytes: b, Complete: complete}
}

// Len is the length of the literal in bytes.
func (l Literal) Len() int { return len(l.Bytes) }

// String quotes the bytes and marks a prefix-only literal with a trailing
// "...", as in "foo"... for foo[0-9].
func (l Literal) String() string {
	s := strconv.Quote(string(l.Bytes))
	if !l.Complete {
		s += "..."
	}
	return s
}

// Seq is a set of alternative literals. A nil *Seq is empty.
type Seq struct {
	literals []Literal
}

// NewSeq returns a sequence holding lits.
func NewSeq(lits ...Literal) *Seq {
	return &Seq{literals: lits}
}

func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.literals)
}

// Get returns literal i. It panics when i is out of range.
func (s *Seq) Get(i int) Literal { return s.literals[i] }

func (s *Seq) IsEmpty() bool { return s.Len() == 0 }

// AllNonEmpty reports whether s has literals and none is the empty string.
// An empty literal means a match can start anywhere, so only such sequences
// can drive a prefilter.
func (s *Seq) AllNonEmpty() bool {
	if s.IsEmpty() {
		return false
	}
	return !slices.ContainsFunc(s.literals, func(l Literal) bool { return len(l.Bytes) == 0 })
}

// MinLen is the length of the shortest literal, or 0 for an empty sequence.
func (s *Seq) MinLen() int {
	if s.IsEmpty() {
		return 0
	}
	return slices.MinFunc(s.literals, func(a, b Literal) int {
		return cmp.Compare(len(a.Bytes), len(b.Bytes))
	}).Len()
}

// Clone returns a copy of s that shares the literal bytes but not the set.
func (s *Seq) Clone() *Seq {
	if s == nil {
		return NewSeq()
	}
	return NewSeq(slices.Clone(s.literals)...)
}

// Minimize drops every literal that has another literal as a prefix, and
// duplicates. A match starting with the longer one also starts with the
// shorter one, so the set still covers the same start positions. Survivors
// are ordered by length, shortest first.
func (s *Seq) Minimize() {
	if s.IsEmpty() {
		return
	}
	slices.SortStableFunc(s.literals, func(a, b Literal) int {
		return cmp.Compare(len(a.Bytes), len(b.Bytes))
	})

	kept := s.literals[:0:0]
	for _, lit := range s.literals {
		covered := slices.ContainsFunc(kept, func(k Literal) bool {
			return bytes.HasPrefix(lit.Bytes, k.Bytes)
		})
		if !covered {
			kept = append(kept, lit)
		}
	}
	s.literals = kept
}
