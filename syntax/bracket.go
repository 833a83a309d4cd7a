package syntax

import (
	"cmp"
	"slices"
	"unicode"
	"unicode/utf8"
)

// maxNegClasses caps the classes a single negated bracket may name.
const maxNegClasses = 64

// bracket collects the terms of one bracket expression.
type bracket struct {
	lits       []*Literal
	negate     bool
	negClasses []Class
}

func (b *bracket) add(t *Tree, min, max int, class Class) error {
	l, err := t.NewLit()
	if err != nil {
		return err
	}
	l.CodeMin = min
	l.CodeMax = max
	l.Class = class
	l.Position = -1
	b.lits = append(b.lits, l)
	return nil
}

// addFolded adds the opposite-case runs of [min, max]. Each character is
// assumed to have at most one opposite-case form.
func (b *bracket) addFolded(t *Tree, min, max int) error {
	for c := min; c <= max; {
		var fold func(rune) rune
		switch r := rune(c); {
		case unicode.IsLower(r):
			fold = unicode.ToUpper
		case unicode.IsUpper(r):
			fold = unicode.ToLower
		default:
			c++
			continue
		}
		lo := int(fold(rune(c)))
		hi := lo
		for c, hi = c+1, hi+1; c <= max; c, hi = c+1, hi+1 {
			if int(fold(rune(c))) != hi {
				break
			}
		}
		if err := b.add(t, lo, hi-1, ClassNone); err != nil {
			return err
		}
	}
	return nil
}

// parseBracket parses a bracket expression whose body starts at i, just
// after the opening '['.
func (p *parser) parseBracket(s string, i int) (*Node, int, error) {
	b := &bracket{}
	if at(s, i) == '^' {
		b.negate = true
		i++
	}
	i, err := p.parseBracketTerms(s, i, b)
	if err != nil {
		return nil, i, err
	}

	lits := b.lits
	var negClasses []Class
	if b.negate {
		// A non-matching list never matches newline under Newline.
		if p.flags&Newline != 0 {
			if err := b.add(p.tree, '\n', '\n', ClassNone); err != nil {
				return nil, i, err
			}
		}
		lits = b.lits
		slices.SortStableFunc(lits, func(x, y *Literal) int {
			return cmp.Compare(x.CodeMin, y.CodeMin)
		})
		// Sentinel closing the last complement range.
		if err := b.add(p.tree, MaxChar+1, MaxChar+1, ClassNone); err != nil {
			return nil, i, err
		}
		lits = b.lits
		if len(b.negClasses) > 0 {
			negClasses = slices.Clone(b.negClasses)
		}
	}

	var node *Node
	negmin := 0
	for _, l := range lits {
		if b.negate {
			lo, hi := l.CodeMin, l.CodeMax
			if lo <= negmin {
				negmin = max(hi+1, negmin)
				continue
			}
			l.CodeMin = negmin
			l.CodeMax = lo - 1
			negmin = hi + 1
		}
		l.Position = p.position
		l.NegClasses = negClasses
		n, err := p.tree.NewLiteralNode(l)
		if err != nil {
			return nil, i, err
		}
		if node, err = p.tree.NewUnion(node, n); err != nil {
			return nil, i, err
		}
	}
	if node == nil {
		// Everything was negated away.
		if node, err = p.tree.NewLiteral(MaxChar+1, MaxChar+1, p.position); err != nil {
			return nil, i, err
		}
	}
	p.position++
	return node, i, nil
}

// parseBracketTerms parses terms up to and including the closing ']' and
// returns the index after it.
func (p *parser) parseBracketTerms(s string, i int, b *bracket) (int, error) {
	start := i
	for {
		if i >= len(s) {
			return i, EBrack
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return i, BadPat
		}
		c := s[i]
		if c == ']' && i != start {
			return i + 1, nil
		}
		// [a-z--@] is accepted as [a-z] plus [--@].
		if c == '-' && i != start && at(s, i+1) != ']' &&
			(at(s, i+1) != '-' || at(s, i+2) == ']') {
			return i, ERange
		}
		if c == '[' && (at(s, i+1) == '.' || at(s, i+1) == '=') {
			return i, ECollate
		}

		var min, max int
		class := ClassNone
		if c == '[' && at(s, i+1) == ':' {
			i += 2
			n := 0
			for ; n < classNameMax && i+n < len(s); n++ {
				if s[i+n] == ':' {
					class = LookupClass(s[i : i+n])
					break
				}
			}
			if class == ClassNone || at(s, i+n+1) != ']' {
				return i, ECtype
			}
			min, max = 0, MaxChar
			i += n + 2
		} else {
			min, max = int(r), int(r)
			i += size
			if at(s, i) == '-' && at(s, i+1) != ']' {
				i++
				if i >= len(s) {
					return i, ERange
				}
				r2, size2 := utf8.DecodeRuneInString(s[i:])
				if (r2 == utf8.RuneError && size2 <= 1) || min > int(r2) {
					return i, ERange
				}
				max = int(r2)
				i += size2
			}
		}

		if class != ClassNone && b.negate {
			if len(b.negClasses) >= maxNegClasses {
				return i, ESpace
			}
			b.negClasses = append(b.negClasses, class)
			continue
		}
		if err := b.add(p.tree, min, max, class); err != nil {
			return i, err
		}
		// Case folding is applied before negation.
		if p.flags&ICase != 0 && class == ClassNone {
			if err := b.addFolded(p.tree, min, max); err != nil {
				return i, err
			}
		}
	}
}
