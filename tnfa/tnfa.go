// Package tnfa compiles parsed POSIX patterns into tagged nondeterministic
// finite automata and runs them.
//
// Compilation follows these steps:
//  1. Parse the pattern into an AST (package syntax)
//  2. Extract a literal prefilter from the AST (optional)
//  3. Count and insert tags marking submatch boundaries and the choices
//     that decide between competing paths
//  4. Expand bounded repetitions into copies
//  5. Compute nullable, firstpos and lastpos for every node
//  6. Build the transition table from those sets
//
// Two matchers run the automaton. Patterns without back-references use the
// parallel matcher, which follows every path in lock step and resolves
// conflicts with tag comparison. Patterns with back-references use the
// backtracking matcher. The choice is made once at compile time.
//
// A compiled TNFA is immutable and safe for concurrent use.
package tnfa

import (
	"context"
	"sync"

	"github.com/coregx/tre/prefilter"
	"github.com/coregx/tre/syntax"
)

// TagDirection tells tagOrder whether a smaller or a larger tag value wins.
type TagDirection uint8

const (
	TagMinimize TagDirection = iota
	TagMaximize
)

func (d TagDirection) String() string {
	if d == TagMinimize {
		return "minimize"
	}
	return "maximize"
}

// Transition is an edge of the automaton. It consumes one character in
// [CodeMin, CodeMax], or the text of a back-reference when Assertions
// contains AssertBackref.
type Transition struct {
	CodeMin    rune
	CodeMax    rune
	State      int
	Tags       []int
	Assertions syntax.Assertion
	Class      syntax.Class
	NegClasses []syntax.Class
	Backref    int
}

// SubmatchData tells where the offsets of one capture group are recorded.
// A tag equal to the end tag stands for the end of the match; -1 means the
// group never received a tag.
type SubmatchData struct {
	SoTag   int
	EoTag   int
	Parents []int
}

// minimalPair marks a non-greedy repetition: end is the tag after it, start
// the tag where it was entered.
type minimalPair struct {
	end   int
	start int
}

// TNFA is a compiled pattern.
type TNFA struct {
	pattern string
	flags   syntax.Flags
	cfg     Config

	states    [][]Transition
	initial   []Transition
	final     int
	numStates int

	numTags       int
	endTag        int
	numSubmatches int
	submatchData  []SubmatchData
	tagDirections []TagDirection
	minimalTags   []minimalPair
	haveBackrefs  bool

	prefilter prefilter.Prefilter
	matcher   matcher
	scratch   sync.Pool
	stats     stats
}

// matcher runs the automaton from start and returns the end offset of the
// match, or -1. matchTags receives the tag values of the match; nil means
// only the end offset is wanted.
type matcher interface {
	run(ctx context.Context, t *TNFA, input []byte, start int, matchTags []int, eflags ExecFlags) (int, error)
}

// Compile parses pattern and builds its automaton.
//
// Errors are *syntax.Error values carrying the POSIX code, or *ConfigError
// when cfg is invalid.
func Compile(pattern string, flags syntax.Flags, cfg Config) (*TNFA, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tree := syntax.NewTree(cfg.limits())
	parsed, err := syntax.Parse(pattern, flags, tree)
	if err != nil {
		return nil, err
	}

	t := &TNFA{
		pattern:       pattern,
		flags:         flags,
		cfg:           cfg,
		numSubmatches: parsed.NumSubmatches,
		haveBackrefs:  parsed.MaxBackref >= 0,
	}
	if cfg.EnablePrefilter {
		t.prefilter = buildPrefilter(parsed.Root, cfg)
	}
	if err := t.build(tree, parsed); err != nil {
		return nil, &syntax.Error{Code: syntax.CodeOf(err), Pattern: pattern}
	}

	if t.haveBackrefs {
		t.matcher = backtrackMatcher{}
	} else {
		t.matcher = parallelMatcher{}
		t.scratch.New = func() any { return newParallelScratch(t) }
	}
	return t, nil
}

func (t *TNFA) build(tree *syntax.Tree, parsed *syntax.Parsed) error {
	root := parsed.Root
	position := parsed.Positions

	// Tags only serve submatch reporting and back-references.
	if t.haveBackrefs || t.flags&syntax.NoSub == 0 {
		if err := t.addTags(tree, root); err != nil {
			return err
		}
	}

	var err error
	if position, err = expand(tree, root, position, t.tagDirections); err != nil {
		return err
	}

	// The dummy final literal; reaching its state means a match.
	final, err := tree.NewLiteral(0, 0, position)
	if err != nil {
		return err
	}
	position++
	if root, err = tree.NewCatenation(root, final); err != nil {
		return err
	}

	if err := computeNFL(tree, root); err != nil {
		return err
	}
	return t.buildTransitions(tree, root, position)
}

// Pattern returns the source text.
func (t *TNFA) Pattern() string { return t.pattern }

// Flags returns the compile flags.
func (t *TNFA) Flags() syntax.Flags { return t.flags }

// NumSubmatches returns the number of capture groups plus one for the whole
// match.
func (t *TNFA) NumSubmatches() int { return t.numSubmatches }

// NumStates returns the number of automaton states.
func (t *TNFA) NumStates() int { return t.numStates }

// NumTags returns the number of tags, not counting the end tag.
func (t *TNFA) NumTags() int { return t.numTags }

// HasBackrefs reports whether the pattern uses back-references and thus runs
// on the backtracking matcher.
func (t *TNFA) HasBackrefs() bool { return t.haveBackrefs }

// HasPrefilter reports whether searches skip ahead with a literal prefilter.
func (t *TNFA) HasPrefilter() bool { return t.prefilter != nil }

// tagOrder reports whether the tag vector t1 wins over t2. Tags are compared
// in index order; the first difference decides according to its direction.
// Equal vectors lose.
func tagOrder(numTags int, dirs []TagDirection, t1, t2 []int) bool {
	for i := 0; i < numTags; i++ {
		if t1[i] == t2[i] {
			continue
		}
		if dirs[i] == TagMinimize {
			return t1[i] < t2[i]
		}
		return t1[i] > t2[i]
	}
	return false
}
