package tnfa

import (
	"unicode/utf8"

	"github.com/coregx/tre/syntax"
)

// endOfText stands for the character after the last one.
const endOfText rune = -1

// decodeAt returns the character starting at byte offset i and its width.
// Invalid bytes decode as utf8.RuneError of width 1.
func decodeAt(b []byte, i int) (rune, int) {
	if i >= len(b) {
		return endOfText, 0
	}
	if c := b[i]; c < utf8.RuneSelf {
		return rune(c), 1
	}
	return utf8.DecodeRune(b[i:])
}

// decodeBefore returns the character ending at byte offset i, or endOfText
// at the start of input.
func decodeBefore(b []byte, i int) rune {
	if i <= 0 {
		return endOfText
	}
	if c := b[i-1]; c < utf8.RuneSelf {
		return rune(c)
	}
	r, _ := utf8.DecodeLastRune(b[:i])
	return r
}

// cursor is the position of a matcher in its input: prev is the character
// just consumed and next the one about to be.
type cursor struct {
	pos   int
	prev  rune
	next  rune
	width int
}

func cursorAt(input []byte, pos int) cursor {
	next, width := decodeAt(input, pos)
	return cursor{pos: pos, prev: decodeBefore(input, pos), next: next, width: width}
}

// step consumes next.
func (c *cursor) step(input []byte) {
	c.prev = c.next
	c.pos += c.width
	c.next, c.width = decodeAt(input, c.pos)
}

func isWord(r rune) bool { return r != endOfText && syntax.IsWordChar(r) }

// assertionsFail reports whether any of the assertions in a does not hold at
// the cursor.
func (t *TNFA) assertionsFail(a syntax.Assertion, c *cursor, eflags ExecFlags) bool {
	if a&^(syntax.AssertCharClass|syntax.AssertCharClassNeg|syntax.AssertBackref) == 0 {
		return false
	}
	newline := t.flags&syntax.Newline != 0
	if a&syntax.AssertAtBOL != 0 &&
		(c.pos > 0 || eflags&NotBOL != 0) && (c.prev != '\n' || !newline) {
		return true
	}
	if a&syntax.AssertAtEOL != 0 &&
		(c.next != endOfText || eflags&NotEOL != 0) && (c.next != '\n' || !newline) {
		return true
	}
	if a&syntax.AssertAtBOW != 0 && (isWord(c.prev) || !isWord(c.next)) {
		return true
	}
	if a&syntax.AssertAtEOW != 0 && (!isWord(c.prev) || isWord(c.next)) {
		return true
	}
	if a&syntax.AssertAtWB != 0 &&
		c.pos != 0 && c.next != endOfText && isWord(c.prev) == isWord(c.next) {
		return true
	}
	if a&syntax.AssertAtWBNeg != 0 &&
		(c.pos == 0 || c.next == endOfText || isWord(c.prev) != isWord(c.next)) {
		return true
	}
	return false
}

// classesFail reports whether the character just consumed is rejected by the
// class constraints of tr.
func (t *TNFA) classesFail(tr *Transition, prev rune) bool {
	icase := t.flags&syntax.ICase != 0
	if tr.Assertions&syntax.AssertCharClass != 0 {
		if icase {
			if !tr.Class.ContainsFold(prev) {
				return true
			}
		} else if !tr.Class.Contains(prev) {
			return true
		}
	}
	if tr.Assertions&syntax.AssertCharClassNeg != 0 {
		for _, c := range tr.NegClasses {
			if c.Contains(prev) || (icase && c.ContainsFold(prev)) {
				return true
			}
		}
	}
	return false
}
