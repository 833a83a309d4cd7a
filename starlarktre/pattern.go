package starlarktre

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.starlark.net/starlark"

	"github.com/coregx/tre"
	"github.com/coregx/tre/syntax"
)

// Pattern is a compiled regular expression as a Starlark value.
type Pattern struct {
	pattern string
	flags   int
	re      *tre.Regex
}

var (
	_ starlark.Value    = (*Pattern)(nil)
	_ starlark.HasAttrs = (*Pattern)(nil)
)

func newPattern(pattern string, flags int) (*Pattern, error) {
	re, err := tre.Compile(pattern, tre.Flags(flags))
	if err != nil {
		return nil, err
	}
	return &Pattern{pattern: pattern, flags: flags, re: re}, nil
}

func (p *Pattern) String() string {
	return fmt.Sprintf("tre.compile(%s, %d)", starlark.String(p.pattern).String(), p.flags)
}

func (p *Pattern) Type() string          { return "pattern" }
func (p *Pattern) Freeze()               {}
func (p *Pattern) Truth() starlark.Bool  { return true }
func (p *Pattern) Hash() (uint32, error) { return starlark.String(p.pattern).Hash() }

var patternMethods = map[string]*starlark.Builtin{
	"search":  starlark.NewBuiltin("search", patternSearch),
	"match":   starlark.NewBuiltin("match", patternMatch),
	"findall": starlark.NewBuiltin("findall", patternFindall),
	"split":   starlark.NewBuiltin("split", patternSplit),
	"sub":     starlark.NewBuiltin("sub", patternSub),
}

var patternMembers = map[string]func(p *Pattern) starlark.Value{
	"pattern": func(p *Pattern) starlark.Value { return starlark.String(p.pattern) },
	"flags":   func(p *Pattern) starlark.Value { return starlark.MakeInt(p.flags) },
	"groups":  func(p *Pattern) starlark.Value { return starlark.MakeInt(p.re.NumSubexp()) },
}

func (p *Pattern) Attr(name string) (starlark.Value, error) {
	if b, ok := patternMethods[name]; ok {
		return b.BindReceiver(p), nil
	}
	if f, ok := patternMembers[name]; ok {
		return f(p), nil
	}
	return nil, nil // no such attribute
}

func (p *Pattern) AttrNames() []string {
	names := make([]string, 0, len(patternMethods)+len(patternMembers))
	for name := range patternMethods {
		names = append(names, name)
	}
	for name := range patternMembers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// search runs one exec from pos. The result is a tuple of (start, end)
// spans, one per group with None for unset groups, or None without a match.
// With anchored set, only a match starting at pos counts. NOSUB patterns
// report True instead of spans and cannot be anchored.
func (p *Pattern) search(name, s string, pos, eflags int, anchored bool) (starlark.Value, error) {
	pos = min(max(pos, 0), len(s))
	nosub := p.flags&tre.REG_NOSUB != 0
	if nosub && anchored {
		return nil, fmt.Errorf("%s: pattern compiled with NOSUB has no match positions", name)
	}

	m, err := p.re.ExecContext(context.Background(), []byte(s), pos, p.re.NumSubexp()+1, tre.ExecFlags(eflags))
	if errors.Is(err, syntax.NoMatch) {
		return starlark.None, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %v", name, err)
	}
	if nosub {
		return starlark.True, nil
	}
	if anchored && m[0].So != pos {
		return starlark.None, nil
	}

	spans := make(starlark.Tuple, len(m))
	for i, g := range m {
		if g.So < 0 {
			spans[i] = starlark.None
			continue
		}
		spans[i] = starlark.Tuple{starlark.MakeInt(g.So), starlark.MakeInt(g.Eo)}
	}
	return spans, nil
}

// findall lists every match: whole matches when the pattern has no groups,
// the single group's text with one group, or tuples of group texts.
// Unset groups give "".
func (p *Pattern) findall(s string) *starlark.List {
	var l []starlark.Value
	for _, m := range p.re.FindAllStringSubmatchIndex(s, -1) {
		n := len(m) / 2
		group := func(i int) starlark.Value {
			if m[2*i] < 0 {
				return starlark.String("")
			}
			return starlark.String(s[m[2*i]:m[2*i+1]])
		}

		switch n {
		case 1:
			l = append(l, group(0))
		case 2:
			l = append(l, group(1))
		default:
			t := make(starlark.Tuple, 0, n-1)
			for i := 1; i < n; i++ {
				t = append(t, group(i))
			}
			l = append(l, t)
		}
	}
	return starlark.NewList(l)
}

// split divides s around matches; a positive maxSplit limits the number of
// splits and leaves the remainder as the last element.
func (p *Pattern) split(s string, maxSplit int) *starlark.List {
	n := -1
	if maxSplit > 0 {
		n = maxSplit + 1
	}
	parts := p.re.Split(s, n)
	l := make([]starlark.Value, len(parts))
	for i, part := range parts {
		l[i] = starlark.String(part)
	}
	return starlark.NewList(l)
}

// sub replaces up to count matches (all when count <= 0). A string repl is
// expanded with $n and ${n}; a callable receives the matched text and must
// return a string.
func (p *Pattern) sub(thread *starlark.Thread, name string, repl starlark.Value, s string, count int) (starlark.Value, error) {
	n := -1
	if count > 0 {
		n = count
	}

	var (
		template []byte
		fn       starlark.Callable
	)
	switch r := repl.(type) {
	case starlark.String:
		template = []byte(r)
	case starlark.Callable:
		fn = r
	default:
		return nil, fmt.Errorf("%s: got %s for repl, want str or callable", name, repl.Type())
	}

	src := []byte(s)
	dst := make([]byte, 0, len(s))
	last := 0
	for _, m := range p.re.FindAllSubmatchIndex(src, n) {
		dst = append(dst, s[last:m[0]]...)
		if fn == nil {
			dst = p.re.Expand(dst, template, src, m)
		} else {
			v, err := starlark.Call(thread, fn, starlark.Tuple{starlark.String(s[m[0]:m[1]])}, nil)
			if err != nil {
				return nil, err
			}
			str, ok := v.(starlark.String)
			if !ok {
				return nil, fmt.Errorf("%s: repl returned %s, want str", name, v.Type())
			}
			dst = append(dst, string(str)...)
		}
		last = m[1]
	}
	dst = append(dst, s[last:]...)
	return starlark.String(dst), nil
}

func patternSearch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		s           string
		pos, eflags int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &s, "pos?", &pos, "eflags?", &eflags); err != nil {
		return nil, err
	}
	return b.Receiver().(*Pattern).search(b.Name(), s, pos, eflags, false)
}

func patternMatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		s           string
		pos, eflags int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &s, "pos?", &pos, "eflags?", &eflags); err != nil {
		return nil, err
	}
	return b.Receiver().(*Pattern).search(b.Name(), s, pos, eflags, true)
}

func patternFindall(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &s); err != nil {
		return nil, err
	}
	return b.Receiver().(*Pattern).findall(s), nil
}

func patternSplit(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		s        string
		maxSplit int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &s, "maxsplit?", &maxSplit); err != nil {
		return nil, err
	}
	return b.Receiver().(*Pattern).split(s, maxSplit), nil
}

func patternSub(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		repl  starlark.Value
		s     string
		count int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "repl", &repl, "string", &s, "count?", &count); err != nil {
		return nil, err
	}
	return b.Receiver().(*Pattern).sub(thread, b.Name(), repl, s, count)
}
