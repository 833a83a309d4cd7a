// Package tre provides a POSIX regular expression engine for Go.
//
// tre implements the POSIX basic (BRE) and extended (ERE) syntaxes with
// leftmost-longest matching and POSIX submatch rules. Patterns compile to a
// tagged NFA that records submatch boundaries in tags while it runs:
//   - Patterns without back-references run on a parallel matcher that is
//     linear in the input
//   - Patterns with back-references run on a backtracking matcher
//   - Patterns that must start with one of a few literals skip ahead with a
//     memchr, memmem or Aho-Corasick prefilter
//
// The Go API mirrors the stdlib regexp method set. The C-style interface
// (Regcomp, Regexec, Regfree, Regerror) is available for code ported from
// <regex.h>.
//
// Basic usage:
//
//	re, err := tre.Compile(`([a-z]+)@([a-z]+)`, tre.Extended)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(re.FindStringSubmatch("mail root@host now"))
//	// [root@host root host]
//
// Advanced usage:
//
//	config := tre.DefaultConfig()
//	config.MaxBacktrackFrames = 1 << 16
//	re, err := tre.CompileWithConfig(`\(a*\)*\1`, 0, config)
//
// Differences from the stdlib regexp package:
//   - Matches are leftmost-longest, and so are submatches
//   - Syntax is POSIX; Perl escapes other than \w \s \d \b \< \> are literal
//   - Back-references (\1 to \9) are supported in basic syntax
//   - Find methods return nil for patterns compiled with NoSub
package tre

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/coregx/tre/syntax"
	"github.com/coregx/tre/tnfa"
)

// Flags select the syntax and matching rules of a pattern.
type Flags = syntax.Flags

// Compile flags.
const (
	Extended = syntax.Extended
	ICase    = syntax.ICase
	Newline  = syntax.Newline
	NoSub    = syntax.NoSub
	Ungreedy = syntax.Ungreedy
)

// ExecFlags modify a single search.
type ExecFlags = tnfa.ExecFlags

// Exec flags.
const (
	NotBOL = tnfa.NotBOL
	NotEOL = tnfa.NotEOL
)

// Config controls compilation limits and search behavior.
type Config = tnfa.Config

// Stats holds the execution counters of a compiled pattern.
type Stats = tnfa.Stats

// Match is the byte range of a match or submatch; unset groups are {-1, -1}.
type Match = tnfa.Match

// Regex represents a compiled regular expression.
//
// A Regex is safe to use concurrently from multiple goroutines, except for
// ResetStats, which races with the counters of running searches.
//
// Example:
//
//	re := tre.MustCompile(`hello`, 0)
//	if re.Match([]byte("hello world")) {
//	    println("matched!")
//	}
type Regex struct {
	tnfa    *tnfa.TNFA
	pattern string
	flags   Flags
}

// Regexp is an alias for Regex, so code written against the stdlib type
// names keeps compiling.
type Regexp = Regex

// Compile parses a pattern and returns a Regex that can be used to match
// against text. flags selects BRE (0) or ERE (Extended) syntax and the other
// compile options.
//
// Errors are *syntax.Error values; errors.Is reports the POSIX code:
//
//	_, err := tre.Compile("a{2,1}", tre.Extended)
//	errors.Is(err, syntax.BadBR) // true
func Compile(pattern string, flags Flags) (*Regex, error) {
	return CompileWithConfig(pattern, flags, DefaultConfig())
}

// MustCompile is like Compile but panics if the pattern cannot be parsed.
//
// Example:
//
//	var wordRegex = tre.MustCompile(`[[:alpha:]]+`, tre.Extended)
func MustCompile(pattern string, flags Flags) *Regex {
	re, err := Compile(pattern, flags)
	if err != nil {
		msg := err.Error()
		var serr *syntax.Error
		if errors.As(err, &serr) {
			msg = serr.Code.Error()
		}
		panic("tre: Compile(`" + pattern + "`): " + msg)
	}
	return re
}

// CompileWithConfig compiles a pattern with custom limits.
//
// Example:
//
//	config := tre.DefaultConfig()
//	config.EnablePrefilter = false
//	re, err := tre.CompileWithConfig("hello|world", tre.Extended, config)
func CompileWithConfig(pattern string, flags Flags, config Config) (*Regex, error) {
	t, err := tnfa.Compile(pattern, flags, config)
	if err != nil {
		return nil, err
	}
	return &Regex{tnfa: t, pattern: pattern, flags: flags}, nil
}

// DefaultConfig returns the default configuration for compilation.
func DefaultConfig() Config {
	return tnfa.DefaultConfig()
}

// QuoteMeta returns a pattern that matches the literal text s. The result
// means the same in basic and extended syntax: characters whose escaped form
// is an operator in one of them are put in a bracket expression instead.
//
// Example:
//
//	escaped := tre.QuoteMeta("1+1=(2)")
//	// escaped = `1[+]1=[(]2[)]`
func QuoteMeta(s string) string {
	const escaped = `\.*[]^$`
	const bracketed = `()|{}+?`

	n := 0
	for i := 0; i < len(s); i++ {
		switch {
		case isSpecial(s[i], escaped):
			n++
		case isSpecial(s[i], bracketed):
			n += 2
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, 0, len(s)+n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isSpecial(c, escaped):
			buf = append(buf, '\\', c)
		case isSpecial(c, bracketed):
			buf = append(buf, '[', c, ']')
		default:
			buf = append(buf, c)
		}
	}
	return string(buf)
}

// isSpecial returns true if c is in the special characters string.
func isSpecial(c byte, special string) bool {
	for i := 0; i < len(special); i++ {
		if c == special[i] {
			return true
		}
	}
	return false
}

// String returns the source text used to compile the regular expression.
func (r *Regex) String() string {
	return r.pattern
}

// Flags returns the compile flags.
func (r *Regex) Flags() Flags {
	return r.flags
}

// NumSubexp returns the number of parenthesized subexpressions.
//
// Example:
//
//	re := tre.MustCompile(`(a)(b(c))`, tre.Extended)
//	println(re.NumSubexp()) // 3
func (r *Regex) NumSubexp() int {
	return r.tnfa.NumSubmatches() - 1
}

// Longest is a no-op: POSIX matching is always leftmost-longest. It exists
// for compatibility with the stdlib method set.
func (r *Regex) Longest() {}

// Stats returns a snapshot of the execution counters.
func (r *Regex) Stats() Stats {
	return r.tnfa.Stats()
}

// ResetStats zeroes the execution counters.
func (r *Regex) ResetStats() {
	r.tnfa.ResetStats()
}

// Exec searches b and returns the whole match followed by nmatch-1 capture
// groups. When there is no match the error is syntax.NoMatch.
//
// Example:
//
//	re := tre.MustCompile(`^(a+)`, tre.Extended)
//	m, err := re.Exec([]byte("aab"), 2, 0)
//	// m = [{0 2} {0 2}], err = nil
//	_, err = re.Exec([]byte("aab"), 2, tre.NotBOL)
//	// errors.Is(err, syntax.NoMatch)
func (r *Regex) Exec(b []byte, nmatch int, eflags ExecFlags) ([]Match, error) {
	return r.tnfa.Exec(context.Background(), b, 0, nmatch, eflags)
}

// ExecContext is like Exec but starts the search at byte offset start and
// stops when ctx is cancelled. Text before start still counts as left
// context for ^, \b and \<.
func (r *Regex) ExecContext(ctx context.Context, b []byte, start, nmatch int, eflags ExecFlags) ([]Match, error) {
	return r.tnfa.Exec(ctx, b, start, nmatch, eflags)
}

// find returns 2*ncap offsets of the first match at or after pos, or nil.
// Search failures other than a missing match (stack exhaustion) also yield
// nil; ExecContext reports them.
func (r *Regex) find(b []byte, pos, ncap int) []int {
	if r.flags&NoSub != 0 {
		return nil
	}
	m, err := r.tnfa.Exec(context.Background(), b, pos, ncap, 0)
	if err != nil {
		return nil
	}
	out := make([]int, 2*len(m))
	for i, g := range m {
		out[2*i], out[2*i+1] = g.So, g.Eo
	}
	return out
}

// allMatches calls deliver with the offsets of each successive
// non-overlapping match, at most n times when n >= 0. An empty match right
// after the previous match is skipped.
func (r *Regex) allMatches(b []byte, n, ncap int, deliver func([]int)) {
	if n < 0 {
		n = len(b) + 1
	}
	prevEnd := -1
	for pos, i := 0, 0; i < n && pos <= len(b); {
		m := r.find(b, pos, ncap)
		if m == nil {
			break
		}
		accept := true
		if m[1] == pos {
			if m[0] == prevEnd {
				accept = false
			}
			if pos < len(b) {
				_, width := utf8.DecodeRune(b[pos:])
				pos += width
			} else {
				pos++
			}
		} else {
			pos = m[1]
		}
		prevEnd = m[1]
		if accept {
			deliver(m)
			i++
		}
	}
}

// Match reports whether the byte slice b contains any match of the pattern.
//
// Example:
//
//	re := tre.MustCompile(`[0-9]+`, tre.Extended)
//	if re.Match([]byte("hello 123")) {
//	    println("contains digits")
//	}
func (r *Regex) Match(b []byte) bool {
	ok, _ := r.tnfa.Match(context.Background(), b, 0, 0)
	return ok
}

// MatchString reports whether the string s contains any match of the pattern.
func (r *Regex) MatchString(s string) bool {
	return r.Match([]byte(s))
}

// Find returns a slice holding the text of the leftmost-longest match in b.
// Returns nil if no match is found.
//
// Example:
//
//	re := tre.MustCompile(`a|ab`, tre.Extended)
//	println(string(re.Find([]byte("xabc")))) // "ab"
func (r *Regex) Find(b []byte) []byte {
	loc := r.find(b, 0, 1)
	if loc == nil {
		return nil
	}
	return b[loc[0]:loc[1]:loc[1]]
}

// FindString returns the text of the leftmost-longest match in s, or "" if
// there is none.
func (r *Regex) FindString(s string) string {
	loc := r.find([]byte(s), 0, 1)
	if loc == nil {
		return ""
	}
	return s[loc[0]:loc[1]]
}

// FindIndex returns a two-element slice of integers defining the location of
// the leftmost-longest match in b. The match is at b[loc[0]:loc[1]].
// Returns nil if no match is found.
func (r *Regex) FindIndex(b []byte) []int {
	return r.find(b, 0, 1)
}

// FindStringIndex is like FindIndex for a string.
func (r *Regex) FindStringIndex(s string) []int {
	return r.FindIndex([]byte(s))
}

// FindSubmatch returns the text of the leftmost-longest match and of its
// capture groups. Unmatched groups are nil. Returns nil if there is no match.
//
// Example:
//
//	re := tre.MustCompile(`(a|ab)(c|bcd)`, tre.Extended)
//	m := re.FindSubmatch([]byte("abcd"))
//	// m = ["abcd", "a", "bcd"]
func (r *Regex) FindSubmatch(b []byte) [][]byte {
	loc := r.find(b, 0, r.tnfa.NumSubmatches())
	if loc == nil {
		return nil
	}
	return submatchBytes(b, loc)
}

// FindStringSubmatch is like FindSubmatch for a string; unmatched groups are
// "".
func (r *Regex) FindStringSubmatch(s string) []string {
	loc := r.find([]byte(s), 0, r.tnfa.NumSubmatches())
	if loc == nil {
		return nil
	}
	return submatchStrings(s, loc)
}

// FindSubmatchIndex returns index pairs for the leftmost-longest match and
// its capture groups: loc[2*i:2*i+2] is group i. Unmatched groups are -1.
func (r *Regex) FindSubmatchIndex(b []byte) []int {
	return r.find(b, 0, r.tnfa.NumSubmatches())
}

// FindStringSubmatchIndex is like FindSubmatchIndex for a string.
func (r *Regex) FindStringSubmatchIndex(s string) []int {
	return r.FindSubmatchIndex([]byte(s))
}

// FindAll returns all successive non-overlapping matches in b. If n >= 0 it
// returns at most n matches. Returns nil if there is no match.
//
// Matches after the first keep the text before them as left context, so
// anchors see the real input:
//
//	re := tre.MustCompile(`\<a`, tre.Extended)
//	re.FindAllString("a ba a", -1) // ["a", "a"] at 0 and 5
func (r *Regex) FindAll(b []byte, n int) [][]byte {
	var out [][]byte
	r.allMatches(b, n, 1, func(m []int) {
		out = append(out, b[m[0]:m[1]:m[1]])
	})
	return out
}

// FindAllString is like FindAll for a string.
func (r *Regex) FindAllString(s string, n int) []string {
	var out []string
	r.allMatches([]byte(s), n, 1, func(m []int) {
		out = append(out, s[m[0]:m[1]])
	})
	return out
}

// FindAllIndex returns the index pairs of all successive matches in b.
func (r *Regex) FindAllIndex(b []byte, n int) [][]int {
	var out [][]int
	r.allMatches(b, n, 1, func(m []int) {
		out = append(out, m)
	})
	return out
}

// FindAllStringIndex is like FindAllIndex for a string.
func (r *Regex) FindAllStringIndex(s string, n int) [][]int {
	return r.FindAllIndex([]byte(s), n)
}

// FindAllSubmatch returns the groups of all successive matches in b.
func (r *Regex) FindAllSubmatch(b []byte, n int) [][][]byte {
	var out [][][]byte
	r.allMatches(b, n, r.tnfa.NumSubmatches(), func(m []int) {
		out = append(out, submatchBytes(b, m))
	})
	return out
}

// FindAllStringSubmatch is like FindAllSubmatch for a string.
func (r *Regex) FindAllStringSubmatch(s string, n int) [][]string {
	var out [][]string
	r.allMatches([]byte(s), n, r.tnfa.NumSubmatches(), func(m []int) {
		out = append(out, submatchStrings(s, m))
	})
	return out
}

// FindAllSubmatchIndex returns the group index pairs of all successive
// matches in b.
func (r *Regex) FindAllSubmatchIndex(b []byte, n int) [][]int {
	var out [][]int
	r.allMatches(b, n, r.tnfa.NumSubmatches(), func(m []int) {
		out = append(out, m)
	})
	return out
}

// FindAllStringSubmatchIndex is like FindAllSubmatchIndex for a string.
func (r *Regex) FindAllStringSubmatchIndex(s string, n int) [][]int {
	return r.FindAllSubmatchIndex([]byte(s), n)
}

// Count returns the number of non-overlapping matches in b, at most n when
// n >= 0.
func (r *Regex) Count(b []byte, n int) int {
	count := 0
	r.allMatches(b, n, 1, func([]int) { count++ })
	return count
}

// CountString is like Count for a string.
func (r *Regex) CountString(s string, n int) int {
	return r.Count([]byte(s), n)
}

func submatchBytes(b []byte, loc []int) [][]byte {
	out := make([][]byte, len(loc)/2)
	for i := range out {
		if so, eo := loc[2*i], loc[2*i+1]; so >= 0 {
			out[i] = b[so:eo:eo]
		}
	}
	return out
}

func submatchStrings(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if so, eo := loc[2*i], loc[2*i+1]; so >= 0 {
			out[i] = s[so:eo]
		}
	}
	return out
}
