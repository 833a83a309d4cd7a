// Package starlarktre exposes the POSIX regex engine to Starlark scripts.
//
// The module is installed as a predeclared value:
//
//	predeclared := starlark.StringDict{"tre": starlarktre.NewModule()}
//
// and used from a script:
//
//	p = tre.compile("([a-z]+)=([0-9]+)", tre.EXTENDED)
//	p.search("key=42")            # ((0, 6), (0, 3), (4, 6))
//	tre.sub("a+", "-", "caaab", flags=tre.EXTENDED)  # "c-b"
//
// Compile flags (EXTENDED, ICASE, NEWLINE, NOSUB) and exec flags (NOTBOL,
// NOTEOL) are separate parameters because their bit values overlap.
package starlarktre

import (
	"container/list"
	"fmt"
	"sync"

	"go.starlark.net/starlark"

	"github.com/coregx/tre"
)

// maxCacheSize bounds the number of compiled patterns kept by a module.
const maxCacheSize = 32

// Module is the Starlark value of the tre module. It keeps an LRU cache of
// compiled patterns shared by the module-level functions.
type Module struct {
	members starlark.StringDict

	mu    sync.Mutex
	list  *list.List                 // most recently used at the front
	cache map[cacheKey]*list.Element // values are *cacheValue
}

type cacheKey struct {
	pattern string
	flags   int
}

type cacheValue struct {
	pattern *Pattern
	key     cacheKey
}

// NewModule creates a tre module with an empty pattern cache.
func NewModule() *Module {
	members := starlark.StringDict{
		"EXTENDED": starlark.MakeInt(tre.REG_EXTENDED),
		"ICASE":    starlark.MakeInt(tre.REG_ICASE),
		"NEWLINE":  starlark.MakeInt(tre.REG_NEWLINE),
		"NOSUB":    starlark.MakeInt(tre.REG_NOSUB),
		"UNGREEDY": starlark.MakeInt(tre.REG_UNGREEDY),
		"NOTBOL":   starlark.MakeInt(tre.REG_NOTBOL),
		"NOTEOL":   starlark.MakeInt(tre.REG_NOTEOL),

		"compile": starlark.NewBuiltin("compile", modCompile),
		"purge":   starlark.NewBuiltin("purge", modPurge),
		"escape":  starlark.NewBuiltin("escape", modEscape),
		"search":  starlark.NewBuiltin("search", modSearch),
		"match":   starlark.NewBuiltin("match", modMatch),
		"findall": starlark.NewBuiltin("findall", modFindall),
		"split":   starlark.NewBuiltin("split", modSplit),
		"sub":     starlark.NewBuiltin("sub", modSub),
	}

	return &Module{
		members: members,
		list:    list.New(),
		cache:   make(map[cacheKey]*list.Element),
	}
}

var (
	_ starlark.Value    = (*Module)(nil)
	_ starlark.HasAttrs = (*Module)(nil)
)

func (m *Module) Freeze()               { m.members.Freeze() }
func (m *Module) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", m.Type()) }
func (m *Module) String() string        { return "<module tre>" }
func (m *Module) Truth() starlark.Bool  { return true }
func (m *Module) Type() string          { return "module" }

func (m *Module) Attr(name string) (starlark.Value, error) {
	if v, ok := m.members[name]; ok {
		if b, ok := v.(*starlark.Builtin); ok {
			return b.BindReceiver(m), nil
		}
		return v, nil
	}
	return nil, nil // no such attribute
}

func (m *Module) AttrNames() []string { return m.members.Keys() }

// compile returns the cached pattern for (pattern, flags), compiling and
// caching it on a miss. The least recently used entry is evicted when the
// cache is full.
func (m *Module) compile(pattern string, flags int) (*Pattern, error) {
	key := cacheKey{pattern: pattern, flags: flags}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.cache[key]; ok {
		m.list.MoveToFront(e)
		return e.Value.(*cacheValue).pattern, nil
	}

	p, err := newPattern(pattern, flags)
	if err != nil {
		return nil, err
	}

	if m.list.Len() >= maxCacheSize {
		last := m.list.Back()
		delete(m.cache, last.Value.(*cacheValue).key)
		m.list.Remove(last)
	}
	m.cache[key] = m.list.PushFront(&cacheValue{pattern: p, key: key})
	return p, nil
}

func (m *Module) purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list.Init()
	clear(m.cache)
}

// cacheLen is the number of cached patterns.
func (m *Module) cacheLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list.Len()
}

// patternParam accepts either a pattern string or a compiled Pattern.
type patternParam struct {
	compiled *Pattern
	raw      string
}

var _ starlark.Unpacker = (*patternParam)(nil)

func (p *patternParam) Unpack(v starlark.Value) error {
	switch t := v.(type) {
	case *Pattern:
		p.compiled = t
	case starlark.String:
		p.raw = string(t)
	default:
		return fmt.Errorf("got %s, want str or pattern", v.Type())
	}
	return nil
}

// resolve returns the compiled pattern for a module-level call.
func resolve(b *starlark.Builtin, param patternParam, flags int) (*Pattern, error) {
	if param.compiled != nil {
		if flags != 0 {
			return nil, fmt.Errorf("%s: cannot process flags argument with a compiled pattern", b.Name())
		}
		return param.compiled, nil
	}

	m := b.Receiver().(*Module)
	p, err := m.compile(param.raw, flags)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", b.Name(), err)
	}
	return p, nil
}

// modCompile compiles a pattern into a Pattern value.
func modCompile(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		flags   int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "flags?", &flags); err != nil {
		return nil, err
	}
	p, err := resolve(b, pattern, flags)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// modPurge clears the pattern cache.
func modPurge(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	b.Receiver().(*Module).purge()
	return starlark.None, nil
}

// modEscape quotes every special character of s.
func modEscape(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &s); err != nil {
		return nil, err
	}
	return starlark.String(tre.QuoteMeta(s)), nil
}

func modSearch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern       patternParam
		s             string
		flags, eflags int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &s, "flags?", &flags, "eflags?", &eflags); err != nil {
		return nil, err
	}
	p, err := resolve(b, pattern, flags)
	if err != nil {
		return nil, err
	}
	return p.search(b.Name(), s, 0, eflags, false)
}

func modMatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern       patternParam
		s             string
		flags, eflags int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &s, "flags?", &flags, "eflags?", &eflags); err != nil {
		return nil, err
	}
	p, err := resolve(b, pattern, flags)
	if err != nil {
		return nil, err
	}
	return p.search(b.Name(), s, 0, eflags, true)
}

func modFindall(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		s       string
		flags   int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &s, "flags?", &flags); err != nil {
		return nil, err
	}
	p, err := resolve(b, pattern, flags)
	if err != nil {
		return nil, err
	}
	return p.findall(s), nil
}

func modSplit(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern         patternParam
		s               string
		maxSplit, flags int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &s, "maxsplit?", &maxSplit, "flags?", &flags); err != nil {
		return nil, err
	}
	p, err := resolve(b, pattern, flags)
	if err != nil {
		return nil, err
	}
	return p.split(s, maxSplit), nil
}

func modSub(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern      patternParam
		repl         starlark.Value
		s            string
		count, flags int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "repl", &repl, "string", &s, "count?", &count, "flags?", &flags); err != nil {
		return nil, err
	}
	p, err := resolve(b, pattern, flags)
	if err != nil {
		return nil, err
	}
	return p.sub(thread, b.Name(), repl, s, count)
}
