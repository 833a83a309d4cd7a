package syntax

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/coregx/tre/internal/arena"
	"github.com/coregx/tre/internal/stack"
)

// MaxChar is the largest code point a literal range can cover.
const MaxChar = unicode.MaxRune

// Op is the kind of an AST node.
type Op uint8

const (
	OpLiteral Op = iota
	OpCatenation
	OpIteration
	OpUnion
)

func (op Op) String() string {
	switch op {
	case OpLiteral:
		return "Literal"
	case OpCatenation:
		return "Catenation"
	case OpIteration:
		return "Iteration"
	case OpUnion:
		return "Union"
	default:
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
}

// Special literal kinds, stored in Literal.CodeMin.
const (
	CodeEmpty     = -1 // matches the empty string
	CodeAssertion = -2 // CodeMax holds Assertion bits
	CodeTag       = -3 // CodeMax holds the tag id
	CodeBackref   = -4 // CodeMax holds the group index
)

// Assertion is a set of zero-width conditions attached to a literal or a
// transition.
type Assertion uint16

const (
	AssertCharClass Assertion = 1 << iota
	AssertCharClassNeg
	AssertAtBOL
	AssertAtEOL
	AssertAtBOW
	AssertAtEOW
	AssertAtWB
	AssertAtWBNeg
	AssertBackref
)

// Nullability caches whether a subtree can match the empty string.
type Nullability int8

const (
	NullUnknown Nullability = iota
	NullFalse
	NullTrue
)

// Literal is the payload of an OpLiteral node: a code point range, or one of
// the special kinds when CodeMin is negative.
type Literal struct {
	CodeMin    int
	CodeMax    int
	Position   int
	Class      Class
	NegClasses []Class
}

// IsSpecial reports whether l is an empty, assertion, tag or back-reference
// literal.
func (l *Literal) IsSpecial() bool { return l.CodeMin < 0 }

func (l *Literal) IsEmpty() bool     { return l.CodeMin == CodeEmpty }
func (l *Literal) IsAssertion() bool { return l.CodeMin == CodeAssertion }
func (l *Literal) IsTag() bool       { return l.CodeMin == CodeTag }
func (l *Literal) IsBackref() bool   { return l.CodeMin == CodeBackref }

// PosTags is one member of a firstpos or lastpos set: a TNFA position with
// the character data of that position and the tags and assertions crossed
// on the way to it.
type PosTags struct {
	Position   int
	CodeMin    int
	CodeMax    int
	Tags       []int
	Assertions Assertion
	Class      Class
	NegClasses []Class
	Backref    int
}

// Node is an AST node. Which fields are meaningful depends on Op:
// OpLiteral uses Lit, OpCatenation and OpUnion use Left and Right,
// OpIteration uses Arg, Min, Max and Minimal (Max == -1 means unbounded).
type Node struct {
	Op      Op
	Lit     *Literal
	Left    *Node
	Right   *Node
	Arg     *Node
	Min     int
	Max     int
	Minimal bool

	Nullable      Nullability
	SubmatchID    int
	NumSubmatches int
	NumTags       int
	Firstpos      []PosTags
	Lastpos       []PosTags
}

// Limits bounds the resources of one compilation.
type Limits struct {
	// MaxNodes caps the number of AST nodes, including those created by
	// repetition expansion. 0 means no cap.
	MaxNodes int

	StackInitial   int
	StackMax       int
	StackIncrement int
}

// Tree allocates the nodes of one compilation. All nodes live until the
// Tree is dropped.
type Tree struct {
	nodes  *arena.Arena[Node]
	lits   *arena.Arena[Literal]
	limits Limits
}

// NewTree creates an allocator honoring l. MaxNodes caps literal payloads
// as well as nodes.
func NewTree(l Limits) *Tree {
	return &Tree{
		nodes:  arena.New[Node](0, l.MaxNodes),
		lits:   arena.New[Literal](0, l.MaxNodes),
		limits: l,
	}
}

// NumNodes returns the number of nodes allocated so far.
func (t *Tree) NumNodes() int { return t.nodes.Len() }

// NewStack creates a work stack sized by the tree's limits.
func NewStack[T any](t *Tree) *stack.Stack[T] {
	return stack.New[T](t.limits.StackInitial, t.limits.StackMax, t.limits.StackIncrement)
}

// NewNode returns a blank node with no submatch.
func (t *Tree) NewNode(op Op) (*Node, error) {
	n, err := t.nodes.Alloc()
	if err != nil {
		return nil, ESpace
	}
	n.Op = op
	n.SubmatchID = -1
	return n, nil
}

// NewLit returns a blank literal payload.
func (t *Tree) NewLit() (*Literal, error) {
	l, err := t.lits.Alloc()
	if err != nil {
		return nil, ESpace
	}
	return l, nil
}

// NewLiteral returns a literal node for [min, max] at position pos.
func (t *Tree) NewLiteral(min, max, pos int) (*Node, error) {
	l, err := t.NewLit()
	if err != nil {
		return nil, err
	}
	l.CodeMin = min
	l.CodeMax = max
	l.Position = pos
	return t.NewLiteralNode(l)
}

// NewLiteralNode wraps an existing payload in a node.
func (t *Tree) NewLiteralNode(l *Literal) (*Node, error) {
	n, err := t.NewNode(OpLiteral)
	if err != nil {
		return nil, err
	}
	n.Lit = l
	return n, nil
}

// NewCatenation returns left followed by right. A nil left yields right.
func (t *Tree) NewCatenation(left, right *Node) (*Node, error) {
	if left == nil {
		return right, nil
	}
	n, err := t.NewNode(OpCatenation)
	if err != nil {
		return nil, err
	}
	n.Left = left
	n.Right = right
	n.NumSubmatches = left.NumSubmatches + right.NumSubmatches
	return n, nil
}

// NewUnion returns the alternation of left and right. A nil left yields
// right.
func (t *Tree) NewUnion(left, right *Node) (*Node, error) {
	if left == nil {
		return right, nil
	}
	n, err := t.NewNode(OpUnion)
	if err != nil {
		return nil, err
	}
	n.Left = left
	n.Right = right
	n.NumSubmatches = left.NumSubmatches + right.NumSubmatches
	return n, nil
}

// NewIteration returns arg repeated between min and max times.
func (t *Tree) NewIteration(arg *Node, min, max int, minimal bool) (*Node, error) {
	n, err := t.NewNode(OpIteration)
	if err != nil {
		return nil, err
	}
	n.Arg = arg
	n.Min = min
	n.Max = max
	n.Minimal = minimal
	n.NumSubmatches = arg.NumSubmatches
	return n, nil
}

// String renders the subtree in prefix form, for tests and debugging.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n == nil {
		b.WriteString("nil")
		return
	}
	if n.SubmatchID >= 0 {
		b.WriteString("#")
		b.WriteString(strconv.Itoa(n.SubmatchID))
	}
	switch n.Op {
	case OpLiteral:
		writeLiteral(b, n.Lit)
	case OpCatenation:
		b.WriteString("cat(")
		n.Left.write(b)
		b.WriteString(" ")
		n.Right.write(b)
		b.WriteString(")")
	case OpUnion:
		b.WriteString("or(")
		n.Left.write(b)
		b.WriteString(" ")
		n.Right.write(b)
		b.WriteString(")")
	case OpIteration:
		b.WriteString("rep{")
		b.WriteString(strconv.Itoa(n.Min))
		b.WriteString(",")
		if n.Max >= 0 {
			b.WriteString(strconv.Itoa(n.Max))
		}
		b.WriteString("}")
		if n.Minimal {
			b.WriteString("?")
		}
		b.WriteString("(")
		n.Arg.write(b)
		b.WriteString(")")
	}
}

func writeLiteral(b *strings.Builder, l *Literal) {
	switch l.CodeMin {
	case CodeEmpty:
		b.WriteString("empty")
		return
	case CodeAssertion:
		b.WriteString("assert(")
		b.WriteString(Assertion(l.CodeMax).String())
		b.WriteString(")")
		return
	case CodeTag:
		b.WriteString("tag")
		b.WriteString(strconv.Itoa(l.CodeMax))
		return
	case CodeBackref:
		b.WriteString("\\")
		b.WriteString(strconv.Itoa(l.CodeMax))
		return
	}
	if l.Class != ClassNone {
		b.WriteString("[:")
		b.WriteString(l.Class.String())
		b.WriteString(":]")
		return
	}
	if l.CodeMin == l.CodeMax {
		b.WriteString(quoteRune(l.CodeMin))
	} else {
		b.WriteString(quoteRune(l.CodeMin))
		b.WriteString("-")
		b.WriteString(quoteRune(l.CodeMax))
	}
	if len(l.NegClasses) > 0 {
		b.WriteString("^[")
		for i, c := range l.NegClasses {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(c.String())
		}
		b.WriteString("]")
	}
}

func quoteRune(c int) string {
	if c > ' ' && c < 0x7F {
		return string(rune(c))
	}
	return "\\x{" + strconv.FormatInt(int64(c), 16) + "}"
}

var assertionNames = []struct {
	a    Assertion
	name string
}{
	{AssertCharClass, "class"},
	{AssertCharClassNeg, "negclass"},
	{AssertAtBOL, "bol"},
	{AssertAtEOL, "eol"},
	{AssertAtBOW, "bow"},
	{AssertAtEOW, "eow"},
	{AssertAtWB, "wb"},
	{AssertAtWBNeg, "nwb"},
	{AssertBackref, "backref"},
}

func (a Assertion) String() string {
	if a == 0 {
		return "none"
	}
	var parts []string
	for _, n := range assertionNames {
		if a&n.a != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
