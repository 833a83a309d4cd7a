package syntax

import "unicode"

// Class is a POSIX character class such as [:alpha:].
type Class uint8

const (
	ClassNone Class = iota
	ClassAlnum
	ClassAlpha
	ClassBlank
	ClassCntrl
	ClassDigit
	ClassGraph
	ClassLower
	ClassPrint
	ClassPunct
	ClassSpace
	ClassUpper
	ClassXdigit
)

// classNameMax is the longest class name looked for between "[:" and ":]".
const classNameMax = 14

var classNames = [...]string{
	ClassNone:   "",
	ClassAlnum:  "alnum",
	ClassAlpha:  "alpha",
	ClassBlank:  "blank",
	ClassCntrl:  "cntrl",
	ClassDigit:  "digit",
	ClassGraph:  "graph",
	ClassLower:  "lower",
	ClassPrint:  "print",
	ClassPunct:  "punct",
	ClassSpace:  "space",
	ClassUpper:  "upper",
	ClassXdigit: "xdigit",
}

// LookupClass returns the class with the given name, or ClassNone.
func LookupClass(name string) Class {
	for c := ClassAlnum; c <= ClassXdigit; c++ {
		if classNames[c] == name {
			return c
		}
	}
	return ClassNone
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "?"
}

// Contains reports whether r belongs to the class.
func (c Class) Contains(r rune) bool {
	switch c {
	case ClassAlnum:
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	case ClassAlpha:
		return unicode.IsLetter(r)
	case ClassBlank:
		return r == ' ' || r == '\t' || (r > 0x7F && unicode.Is(unicode.Zs, r))
	case ClassCntrl:
		return unicode.IsControl(r)
	case ClassDigit:
		return r >= '0' && r <= '9'
	case ClassGraph:
		return unicode.IsGraphic(r) && !unicode.IsSpace(r)
	case ClassLower:
		return unicode.IsLower(r)
	case ClassPrint:
		return unicode.IsPrint(r)
	case ClassPunct:
		return unicode.IsGraphic(r) && !unicode.IsSpace(r) &&
			!unicode.IsLetter(r) && !unicode.IsDigit(r)
	case ClassSpace:
		return unicode.IsSpace(r)
	case ClassUpper:
		return unicode.IsUpper(r)
	case ClassXdigit:
		return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
	}
	return false
}

// ContainsFold is Contains for case-insensitive matching: r matches when
// either its upper or lower form belongs to the class.
func (c Class) ContainsFold(r rune) bool {
	return c.Contains(unicode.ToLower(r)) || c.Contains(unicode.ToUpper(r))
}

// IsWordChar reports whether r is a word character for \b, \<, \> and \w.
func IsWordChar(r rune) bool {
	return r == '_' || ClassAlnum.Contains(r)
}

// hasCase reports whether r has a distinct upper or lower form to add under
// ICase.
func hasCase(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r)
}
