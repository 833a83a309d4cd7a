package literal

import (
	"unicode/utf8"

	"github.com/coregx/tre/syntax"
)

// ExtractorConfig configures literal extraction limits.
//
// These limits prevent excessive extraction from complex patterns:
//   - MaxLiterals: prevents memory bloat from alternations like (a|b|c|d|...)
//   - MaxLiteralLen: prevents extracting very long literals that hurt cache locality
//   - MaxClassSize: prevents expanding large ranges like [a-z]
//
// Example:
//
//	config := literal.ExtractorConfig{
//	    MaxLiterals:   64,
//	    MaxLiteralLen: 32,
//	    MaxClassSize:  10,
//	}
//	extractor := literal.New(config)
type ExtractorConfig struct {
	// MaxLiterals limits the number of literals to extract.
	// Default: 64.
	MaxLiterals int

	// MaxLiteralLen limits the length of each extracted literal. Longer
	// literals are cut and lose their Complete flag.
	// Default: 32.
	MaxLiteralLen int

	// MaxClassSize limits the size of character ranges to expand.
	// [abc] becomes ["a", "b", "c"]; [a-z] (26 chars) is not expanded.
	// Default: 10.
	MaxClassSize int

	// MaxDepth bounds the recursion over the AST. Deeper subtrees give up.
	// Default: 100.
	MaxDepth int
}

// DefaultConfig returns the default extractor configuration.
func DefaultConfig() ExtractorConfig {
	return ExtractorConfig{
		MaxLiterals:   64,
		MaxLiteralLen: 32,
		MaxClassSize:  10,
		MaxDepth:      100,
	}
}

// Extractor extracts prefix literals from parsed patterns.
//
// Example:
//
//	tree := syntax.NewTree(syntax.Limits{})
//	parsed, _ := syntax.Parse("hello|world", syntax.Extended, tree)
//	prefixes := literal.New(literal.DefaultConfig()).ExtractPrefixes(parsed.Root)
//	// prefixes = ["hello", "world"]
type Extractor struct {
	config ExtractorConfig
}

// New creates a new Extractor with the given configuration.
func New(config ExtractorConfig) *Extractor {
	if config.MaxDepth <= 0 {
		config.MaxDepth = 100
	}
	return &Extractor{config: config}
}

// prefixSet is the result for one subtree. known is false when nothing
// useful can be said about how matches of the subtree begin.
type prefixSet struct {
	lits  [][]byte
	exact bool
	known bool
}

var unknown = prefixSet{}

// ExtractPrefixes returns a set of literals such that every match of the
// pattern rooted at root starts with one of them. The result is empty when
// no such set exists within the configured limits.
//
// Handles these node kinds:
//   - character ranges: expanded when small enough
//   - empty, assertions and tags: the empty string (zero-width)
//   - catenation: cross product while the left side is exact
//   - union: union of both sides
//   - iteration with min >= 1: the argument's prefixes
//   - iteration with min == 0, back-references, classes: unknown
//
// Examples:
//
//	"hello"         → ["hello"] (complete)
//	"(foo|bar)x"    → ["foox", "barx"] (complete)
//	"[ab]c*"        → ["a", "b"]
//	"x*foo"         → [] (a match may start with foo or x)
func (e *Extractor) ExtractPrefixes(root *syntax.Node) *Seq {
	if root == nil {
		return NewSeq()
	}
	ps := e.extract(root, 0)
	if !ps.known || len(ps.lits) == 0 {
		return NewSeq()
	}
	lits := make([]Literal, len(ps.lits))
	for i, b := range ps.lits {
		lits[i] = NewLiteral(b, ps.exact)
	}
	return NewSeq(lits...)
}

func (e *Extractor) extract(n *syntax.Node, depth int) prefixSet {
	if depth > e.config.MaxDepth {
		return unknown
	}

	switch n.Op {
	case syntax.OpLiteral:
		return e.extractLiteral(n.Lit)

	case syntax.OpUnion:
		left := e.extract(n.Left, depth+1)
		if !left.known {
			return unknown
		}
		right := e.extract(n.Right, depth+1)
		if !right.known {
			return unknown
		}
		lits := appendUnique(left.lits, right.lits)
		if len(lits) > e.config.MaxLiterals {
			return unknown
		}
		return prefixSet{lits: lits, exact: left.exact && right.exact, known: true}

	case syntax.OpCatenation:
		left := e.extract(n.Left, depth+1)
		if !left.known || !left.exact {
			return left
		}
		right := e.extract(n.Right, depth+1)
		if !right.known {
			left.exact = false
			return left
		}
		return e.cross(left, right)

	case syntax.OpIteration:
		if n.Min == 0 {
			return unknown
		}
		arg := e.extract(n.Arg, depth+1)
		if n.Min != 1 || n.Max != 1 {
			arg.exact = false
		}
		return arg
	}
	return unknown
}

func (e *Extractor) extractLiteral(lit *syntax.Literal) prefixSet {
	switch {
	case lit.IsBackref():
		return unknown
	case lit.IsSpecial():
		return prefixSet{lits: [][]byte{{}}, exact: true, known: true}
	case lit.Class != syntax.ClassNone || len(lit.NegClasses) > 0:
		return unknown
	}

	size := lit.CodeMax - lit.CodeMin + 1
	if size > e.config.MaxClassSize || size > e.config.MaxLiterals {
		return unknown
	}
	ps := prefixSet{exact: true, known: true}
	for r := lit.CodeMin; r <= lit.CodeMax; r++ {
		if !utf8.ValidRune(rune(r)) {
			return unknown
		}
		b := utf8.AppendRune(nil, rune(r))
		if len(b) > e.config.MaxLiteralLen {
			b = b[:e.config.MaxLiteralLen]
			ps.exact = false
		}
		ps.lits = appendUnique(ps.lits, [][]byte{b})
	}
	return ps
}

// cross appends every literal of right to every literal of left. When the
// product would be too large, left alone is returned as an inexact prefix.
func (e *Extractor) cross(left, right prefixSet) prefixSet {
	if len(left.lits)*len(right.lits) > e.config.MaxLiterals {
		left.exact = false
		return left
	}
	exact := right.exact
	var lits [][]byte
	for _, l := range left.lits {
		for _, r := range right.lits {
			b := make([]byte, 0, len(l)+len(r))
			b = append(append(b, l...), r...)
			if len(b) > e.config.MaxLiteralLen {
				b = b[:e.config.MaxLiteralLen]
				exact = false
			}
			lits = appendUnique(lits, [][]byte{b})
		}
	}
	return prefixSet{lits: lits, exact: exact, known: true}
}

func appendUnique(dst, src [][]byte) [][]byte {
	out := make([][]byte, 0, len(dst)+len(src))
	out = append(out, dst...)
next:
	for _, b := range src {
		for _, have := range out {
			if string(have) == string(b) {
				continue next
			}
		}
		out = append(out, b)
	}
	return out
}
