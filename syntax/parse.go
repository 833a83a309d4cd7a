// Package syntax parses POSIX basic and extended regular expressions into an
// abstract syntax tree.
//
// The tree is the input of the TNFA compiler in package tnfa. Besides the
// POSIX grammar the parser accepts the usual extensions: \| \+ \? in basic
// syntax, the assertions \b \B \< \>, the shorthands \w \W \s \S \d \D, the
// control escapes \t \n \r \f \e and code points written as \xHH or
// \x{HHHH}.
//
// Every character-matching atom gets a position number. Positions become the
// states of the compiled automaton.
package syntax

import (
	"unicode"
	"unicode/utf8"

	"github.com/coregx/tre/internal/stack"
)

// Parsed is the result of parsing one pattern.
type Parsed struct {
	Root *Node
	// NumSubmatches counts the capture groups including group 0, the whole
	// match.
	NumSubmatches int
	// MaxBackref is the highest back-reference number used, or -1.
	MaxBackref int
	// Positions is the number of positions handed out.
	Positions int
}

// Parse parses pattern according to flags, allocating nodes from tree.
func Parse(pattern string, flags Flags, tree *Tree) (*Parsed, error) {
	p := &parser{
		pattern:    pattern,
		flags:      flags,
		tree:       tree,
		stack:      NewStack[groupFrame](tree),
		maxBackref: -1,
	}
	root, err := p.parse()
	if err != nil {
		return nil, wrap(err, pattern)
	}
	if p.maxBackref > p.nsub-1 {
		return nil, &Error{Code: ESubReg, Pattern: pattern}
	}
	return &Parsed{
		Root:          root,
		NumSubmatches: p.nsub,
		MaxBackref:    p.maxBackref,
		Positions:     p.position,
	}, nil
}

// groupFrame saves the enclosing branch state while a group is parsed.
type groupFrame struct {
	union  *Node
	branch *Node
	subid  int
}

type parser struct {
	pattern    string
	flags      Flags
	tree       *Tree
	stack      *stack.Stack[groupFrame]
	position   int
	maxBackref int
	nsub       int
	// start is the index where the current branch began; BRE '^' and a
	// leading '*' depend on it.
	start int
}

// at returns the byte at i, or -1 past the end of s.
func at(s string, i int) int {
	if i < len(s) {
		return int(s[i])
	}
	return -1
}

var macros = map[int]string{
	't': "\t",
	'n': "\n",
	'r': "\r",
	'f': "\f",
	'e': "\033",
	'w': "[[:alnum:]_]",
	'W': "[^[:alnum:]_]",
	's': "[[:space:]]",
	'S': "[^[:space:]]",
	'd': "[[:digit:]]",
	'D': "[^[:digit:]]",
}

func (p *parser) ere() bool { return p.flags&Extended != 0 }

func (p *parser) parse() (*Node, error) {
	s := p.pattern
	ere := p.ere()
	var branch, union *Node
	subid := 0
	depth := 0
	i := 0

	if err := p.stack.Push(groupFrame{subid: subid}); err != nil {
		return nil, err
	}
	subid++

	for {
		if (!ere && at(s, i) == '\\' && at(s, i+1) == '(') || (ere && at(s, i) == '(') {
			if err := p.stack.Push(groupFrame{union: union, branch: branch, subid: subid}); err != nil {
				return nil, err
			}
			subid++
			i++
			if !ere {
				i++
			}
			depth++
			branch, union = nil, nil
			p.start = i
			continue
		}

		var node *Node
		var err error
		if (!ere && at(s, i) == '\\' && at(s, i+1) == ')') || (ere && at(s, i) == ')' && depth > 0) {
			node, err = p.tree.NewLiteral(CodeEmpty, -1, -1)
		} else {
			node, i, err = p.parseAtom(s, i)
		}
		if err != nil {
			return nil, err
		}

		// Apply repetitions, join the branch, and close groups. Closing a
		// group yields a new operand, which may itself be repeated.
		for {
			if node, i, err = p.parseRepeats(s, i, node); err != nil {
				return nil, err
			}
			if branch, err = p.tree.NewCatenation(branch, node); err != nil {
				return nil, err
			}

			c := at(s, i)
			endOfBranch := (ere && c == '|') ||
				(ere && c == ')' && depth > 0) ||
				(!ere && c == '\\' && at(s, i+1) == ')') ||
				(!ere && c == '\\' && at(s, i+1) == '|') ||
				c < 0
			if !endOfBranch {
				break
			}

			// Empty branches are accepted and match the empty string.
			if union, err = p.tree.NewUnion(union, branch); err != nil {
				return nil, err
			}
			branch = nil

			if c == '\\' && at(s, i+1) == '|' {
				i += 2
				p.start = i
				break
			}
			if c == '|' {
				i++
				p.start = i
				break
			}

			if c == '\\' {
				if depth == 0 {
					return nil, EParen
				}
				i += 2
			} else if c == ')' {
				i++
			}
			depth--
			frame := p.stack.Pop()
			if node, err = p.marksub(union, frame.subid); err != nil {
				return nil, err
			}
			if c < 0 && depth < 0 {
				p.nsub = subid
				return node, nil
			}
			if c < 0 || depth < 0 {
				return nil, EParen
			}
			branch, union = frame.branch, frame.union
		}
	}
}

// marksub makes node the capture group subid. A node that already carries a
// group is wrapped so both ids survive.
func (p *parser) marksub(node *Node, subid int) (*Node, error) {
	if node.SubmatchID >= 0 {
		empty, err := p.tree.NewLiteral(CodeEmpty, -1, -1)
		if err != nil {
			return nil, err
		}
		n, err := p.tree.NewCatenation(empty, node)
		if err != nil {
			return nil, err
		}
		n.NumSubmatches = node.NumSubmatches
		node = n
	}
	node.SubmatchID = subid
	node.NumSubmatches++
	return node, nil
}

// parseRepeats applies any repetition operators following an operand.
func (p *parser) parseRepeats(s string, i int, node *Node) (*Node, int, error) {
	ere := p.ere()
	for {
		c := at(s, i)
		if c != '\\' && c != '*' {
			if !ere {
				break
			}
			if c != '+' && c != '?' && c != '{' {
				break
			}
		}
		if c == '\\' {
			if ere {
				break
			}
			n := at(s, i+1)
			if n != '+' && n != '?' && n != '{' {
				break
			}
			i++
			c = n
		}
		// BRE: '*' right after a leading '^' is a literal.
		if !ere && i == p.start+1 && s[i-1] == '^' {
			break
		}

		var min, max int
		switch c {
		case '*':
			min, max = 0, -1
			i++
		case '+':
			min, max = 1, -1
			i++
		case '?':
			min, max = 0, 1
			i++
		default:
			var ok bool
			min, max, i, ok = parseDup(s, i+1, ere)
			if !ok {
				return nil, i, BadBR
			}
		}

		var err error
		if max == 0 {
			node, err = p.tree.NewLiteral(CodeEmpty, -1, -1)
		} else {
			node, err = p.tree.NewIteration(node, min, max, p.flags&Ungreedy != 0)
		}
		if err != nil {
			return nil, i, err
		}
	}
	return node, i, nil
}

func isDigit(c int) bool { return c >= '0' && c <= '9' }

// parseDupCount reads a decimal count at i, or returns -1 when there is
// none. Reading stops once the value exceeds DupMax.
func parseDupCount(s string, i int) (int, int) {
	if !isDigit(at(s, i)) {
		return -1, i
	}
	n := 0
	for {
		n = 10*n + (int(s[i]) - '0')
		i++
		if !isDigit(at(s, i)) || n > DupMax {
			break
		}
	}
	return n, i
}

// parseDup parses the body of a bound starting after '{' and returns the
// index after the closing brace.
func parseDup(s string, i int, ere bool) (min, max, next int, ok bool) {
	min, i = parseDupCount(s, i)
	if at(s, i) == ',' {
		max, i = parseDupCount(s, i+1)
	} else {
		max = min
	}

	if (max < min && max >= 0) || max > DupMax || min > DupMax || min < 0 {
		return 0, 0, i, false
	}
	if !ere {
		if at(s, i) != '\\' {
			return 0, 0, i, false
		}
		i++
	}
	if at(s, i) != '}' {
		return 0, 0, i, false
	}
	return min, max, i + 1, true
}

func hexVal(c int) int {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return -1
}

// parseAtom parses one operand of s starting at i. s is either the pattern
// or the expansion of a shorthand escape.
func (p *parser) parseAtom(s string, i int) (*Node, int, error) {
	ere := p.ere()
	t := p.tree

	switch at(s, i) {
	case '[':
		return p.parseBracket(s, i+1)

	case '\\':
		if exp, ok := macros[at(s, i+1)]; ok {
			node, _, err := p.parseAtom(exp, 0)
			return node, i + 2, err
		}
		i++
		var node *Node
		var err error
		switch c := at(s, i); c {
		case -1:
			return nil, i, EEscape
		case 'b':
			node, err = t.NewLiteral(CodeAssertion, int(AssertAtWB), -1)
		case 'B':
			node, err = t.NewLiteral(CodeAssertion, int(AssertAtWBNeg), -1)
		case '<':
			node, err = t.NewLiteral(CodeAssertion, int(AssertAtBOW), -1)
		case '>':
			node, err = t.NewLiteral(CodeAssertion, int(AssertAtEOW), -1)
		case 'x':
			return p.parseHex(s, i+1)
		case '{', '+', '?':
			if !ere {
				return nil, i, BadRpt
			}
			return p.parseLiteral(s, i)
		case '|':
			if !ere {
				// Empty operand; the caller sees "\|" next.
				node, err = t.NewLiteral(CodeEmpty, -1, -1)
				return node, i - 1, err
			}
			return p.parseLiteral(s, i)
		default:
			if !ere && c >= '1' && c <= '9' {
				val := c - '0'
				node, err = t.NewLiteral(CodeBackref, val, p.position)
				p.position++
				if val > p.maxBackref {
					p.maxBackref = val
				}
			} else {
				// Unknown escapes stand for the character itself.
				return p.parseLiteral(s, i)
			}
		}
		return node, i + 1, err

	case '.':
		if p.flags&Newline != 0 {
			lo, err := t.NewLiteral(0, '\n'-1, p.position)
			if err != nil {
				return nil, i, err
			}
			p.position++
			hi, err := t.NewLiteral('\n'+1, MaxChar, p.position)
			if err != nil {
				return nil, i, err
			}
			p.position++
			node, err := t.NewUnion(lo, hi)
			return node, i + 1, err
		}
		node, err := t.NewLiteral(0, MaxChar, p.position)
		p.position++
		return node, i + 1, err

	case '^':
		// Special everywhere in ERE, only at the start of a branch in BRE.
		if !ere && i != p.start {
			return p.parseLiteral(s, i)
		}
		node, err := t.NewLiteral(CodeAssertion, int(AssertAtBOL), -1)
		return node, i + 1, err

	case '$':
		// Special everywhere in ERE, only at the end of a branch in BRE.
		if !ere && i+1 < len(s) && (s[i+1] != '\\' || (at(s, i+2) != ')' && at(s, i+2) != '|')) {
			return p.parseLiteral(s, i)
		}
		node, err := t.NewLiteral(CodeAssertion, int(AssertAtEOL), -1)
		return node, i + 1, err

	case '*', '{', '+', '?':
		if ere {
			return nil, i, BadRpt
		}
		return p.parseLiteral(s, i)

	case '|':
		if !ere {
			return p.parseLiteral(s, i)
		}
		node, err := t.NewLiteral(CodeEmpty, -1, -1)
		return node, i, err

	case -1:
		node, err := t.NewLiteral(CodeEmpty, -1, -1)
		return node, i, err
	}

	return p.parseLiteral(s, i)
}

// parseHex parses the digits of \xHH or \x{HHHH} starting at i.
func (p *parser) parseHex(s string, i int) (*Node, int, error) {
	n := 2
	if at(s, i) == '{' {
		n = 8
		i++
	}
	v := 0
	k := 0
	for ; k < n && v < 0x110000; k++ {
		d := hexVal(at(s, i+k))
		if d < 0 {
			break
		}
		v = 16*v + d
	}
	i += k
	if n == 8 {
		if at(s, i) != '}' {
			return nil, i, EBrace
		}
		i++
	}
	node, err := p.tree.NewLiteral(v, v, p.position)
	p.position++
	return node, i, err
}

// parseLiteral parses the single character at i.
func (p *parser) parseLiteral(s string, i int) (*Node, int, error) {
	r, size := utf8.DecodeRuneInString(s[i:])
	if r == utf8.RuneError && size <= 1 {
		return nil, i, BadPat
	}
	t := p.tree
	var node *Node
	var err error
	if p.flags&ICase != 0 && hasCase(r) {
		// One opposite-case form per character.
		up := int(unicode.ToUpper(r))
		lo := int(unicode.ToLower(r))
		var a, b *Node
		if a, err = t.NewLiteral(up, up, p.position); err != nil {
			return nil, i, err
		}
		if b, err = t.NewLiteral(lo, lo, p.position); err != nil {
			return nil, i, err
		}
		node, err = t.NewUnion(a, b)
	} else {
		node, err = t.NewLiteral(int(r), int(r), p.position)
	}
	p.position++
	return node, i + size, err
}
