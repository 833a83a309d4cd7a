package syntax

import (
	"fmt"
	"strings"
)

// Flags control how a pattern is parsed. The values match the cflags bits of
// the C <regex.h> interface, so they can be passed through unchanged.
type Flags int

const (
	// Extended selects POSIX extended (ERE) syntax instead of basic (BRE).
	Extended Flags = 1 << iota
	// ICase matches letters without regard to case.
	ICase
	// Newline makes '.' and negated brackets skip '\n' and lets '^' and '$'
	// match after and before a newline.
	Newline
	// NoSub reports only success or failure; submatch offsets are not
	// computed.
	NoSub
	// Ungreedy makes every repetition prefer the fewest iterations.
	Ungreedy
)

// DupMax is the largest count accepted in a {m,n} repetition.
const DupMax = 255

var flagNames = []struct {
	f    Flags
	name string
}{
	{Extended, "Extended"},
	{ICase, "ICase"},
	{Newline, "Newline"},
	{NoSub, "NoSub"},
	{Ungreedy, "Ungreedy"},
}

func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	for _, n := range flagNames {
		if f&n.f != 0 {
			parts = append(parts, n.name)
		}
	}
	if rest := f &^ (Extended | ICase | Newline | NoSub | Ungreedy); rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", int(rest)))
	}
	return strings.Join(parts, "|")
}
