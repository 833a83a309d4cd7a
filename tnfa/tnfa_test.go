package tnfa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/coregx/tre/syntax"
)

func mustCompile(t testing.TB, pattern string, flags syntax.Flags) *TNFA {
	t.Helper()
	tn, err := Compile(pattern, flags, DefaultConfig())
	if err != nil {
		t.Fatalf("Compile(%q, %v) error: %v", pattern, flags, err)
	}
	return tn
}

func fmtMatches(ms []Match) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = fmt.Sprintf("(%d,%d)", m.So, m.Eo)
	}
	return strings.Join(parts, "")
}

const ere = syntax.Extended

func TestExec(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		flags   syntax.Flags
		input   string
		eflags  ExecFlags
		want    string // "" means no match
	}{
		// Leftmost-longest.
		{"alternation_longest", "a|ab", ere, "abc", 0, "(0,2)"},
		{"star_greedy", "a*", ere, "aaa", 0, "(0,3)"},
		{"leftmost", "b+", ere, "abbcbbb", 0, "(1,3)"},
		{"overall_longest_first", "(a|ab)(c|bcd)", ere, "abcd", 0, "(0,4)(0,1)(1,4)"},
		{"two_groups", "(a+)(b+)", ere, "aabbb", 0, "(0,5)(0,2)(2,5)"},
		{"empty_pattern", "", ere, "abc", 0, "(0,0)"},
		{"no_match", "xyz", ere, "abc", 0, ""},

		// Unset groups.
		{"union_unset", "(a)|b", ere, "b", 0, "(0,1)(-1,-1)"},
		{"optional_unset", "x(a)?y", ere, "xy", 0, "(0,2)(-1,-1)"},
		{"optional_set", "x(a)?y", ere, "xay", 0, "(0,3)(1,2)"},

		// Bounded repetition.
		{"bounded", "a{2,3}", ere, "aaaa", 0, "(0,3)"},
		{"bounded_too_few", "a{2,3}", ere, "a", 0, ""},
		{"exact_group_last_copy", "(a){2}", ere, "aa", 0, "(0,2)(1,2)"},
		{"dup_max", "a{255}", ere, strings.Repeat("a", 256), 0, "(0,255)"},

		// Brackets and case.
		{"negated_bracket", "[^a]", ere, "abc", 0, "(1,2)"},
		{"bracket_range", "[0-9]+", ere, "ab123c", 0, "(2,5)"},
		{"class", "[[:digit:]]+", ere, "ab123c", 0, "(2,5)"},
		{"negated_class", "[^[:alpha:]]", ere, "ab1", 0, "(2,3)"},
		{"icase", "ABC", ere | syntax.ICase, "xabcx", 0, "(1,4)"},
		{"icase_range", "[a-c]+", ere | syntax.ICase, "xAbCx", 0, "(1,4)"},
		{"dot_unicode", "a.c", ere, "aéc", 0, "(0,4)"},

		// Anchors.
		{"anchored", "^abc$", ere, "abc", 0, "(0,3)"},
		{"not_bol", "^abc", ere, "abc", NotBOL, ""},
		{"not_eol", "abc$", ere, "abc", NotEOL, ""},
		{"bol_without_newline", "^b", ere, "a\nb", 0, ""},
		{"bol_newline", "^b", ere | syntax.Newline, "a\nb", 0, "(2,3)"},
		{"eol_newline", "a$", ere | syntax.Newline, "a\nb", 0, "(0,1)"},
		{"newline_dot", "a.b", ere | syntax.Newline, "a\nb", 0, ""},
		{"newline_neg_range", "[^a-c]", ere | syntax.Newline, "\n", 0, ""},
		{"neg_range_matches_newline", "[^a-c]", ere, "\n", 0, "(0,1)"},
		{"neg_adjacent_ranges", "[^a-cd-f]+", ere, "fedgxa", 0, "(3,5)"},
		{"bre_literal_caret", "a^b", 0, "xa^b", 0, "(1,4)"},
		{"bre_literal_dollar", "a$b", 0, "a$b", 0, "(0,3)"},

		// Word assertions.
		{"bow", `\<foo`, ere, "afoo foo", 0, "(5,8)"},
		{"eow", `foo\>`, ere, "foox foo", 0, "(5,8)"},
		{"word_boundary", `\bb`, ere, "ab b", 0, "(3,4)"},
		{"not_word_boundary", `\Bb`, ere, "ab b", 0, "(1,2)"},

		// Non-greedy.
		{"ungreedy_plus", "a+", ere | syntax.Ungreedy, "aaa", 0, "(0,1)"},
		{"ungreedy_star", "a*", ere | syntax.Ungreedy, "aaa", 0, "(0,0)"},

		// Back-references.
		{"backref_even", `\(a*\)\1`, 0, "aaaa", 0, "(0,4)(0,2)"},
		{"backref_odd", `\(a*\)\1`, 0, "aaa", 0, "(0,2)(0,1)"},
		{"backref_retry", `\(ab\)\1`, 0, "xababx", 0, "(1,5)(1,3)"},
		{"backref_bre", `\(a\)\1`, 0, "aa", 0, "(0,2)(0,1)"},
		{"backref_mismatch", `\(a\)\1`, 0, "ab", 0, ""},
		{"backref_is_exact_under_icase", `\(a\)\1`, syntax.ICase, "aA", 0, ""},
		{"ere_digit_escape_is_literal", `(a)\1`, ere, "aa a1", 0, "(3,5)(3,4)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tn := mustCompile(t, tt.pattern, tt.flags)
			got, err := tn.Exec(context.Background(), []byte(tt.input), 0, tn.NumSubmatches(), tt.eflags)
			if tt.want == "" {
				if !errors.Is(err, syntax.NoMatch) {
					t.Fatalf("Exec(%q, %q) = %s, %v; want REG_NOMATCH", tt.pattern, tt.input, fmtMatches(got), err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Exec(%q, %q) error: %v", tt.pattern, tt.input, err)
			}
			if s := fmtMatches(got); s != tt.want {
				t.Errorf("Exec(%q, %q) = %s, want %s", tt.pattern, tt.input, s, tt.want)
			}
		})
	}
}

func TestExecStart(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		start   int
		want    string
	}{
		{"b", "ab", 1, "(1,2)"},
		{"^b", "ab", 1, ""},
		{`\<b`, "ab", 1, ""},
		{`\bb`, "a b", 2, "(2,3)"},
		{"a*", "baa", 3, "(3,3)"},
		{"a", "aaa", 4, ""},
		{"a", "aaa", -1, ""},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s@%d", tt.pattern, tt.start), func(t *testing.T) {
			tn := mustCompile(t, tt.pattern, ere)
			got, err := tn.Exec(context.Background(), []byte(tt.input), tt.start, 1, 0)
			if tt.want == "" {
				if !errors.Is(err, syntax.NoMatch) {
					t.Fatalf("Exec = %s, %v; want REG_NOMATCH", fmtMatches(got), err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Exec error: %v", err)
			}
			if s := fmtMatches(got); s != tt.want {
				t.Errorf("Exec = %s, want %s", s, tt.want)
			}
		})
	}
}

func TestExecNmatch(t *testing.T) {
	tn := mustCompile(t, "(a)(b)", ere)
	ctx := context.Background()

	got, err := tn.Exec(ctx, []byte("ab"), 0, 1, 0)
	if err != nil || fmtMatches(got) != "(0,2)" {
		t.Errorf("nmatch=1: %s, %v", fmtMatches(got), err)
	}
	got, err = tn.Exec(ctx, []byte("ab"), 0, 5, 0)
	if err != nil || fmtMatches(got) != "(0,2)(0,1)(1,2)(-1,-1)(-1,-1)" {
		t.Errorf("nmatch=5: %s, %v", fmtMatches(got), err)
	}
	got, err = tn.Exec(ctx, []byte("ab"), 0, 0, 0)
	if err != nil || len(got) != 0 {
		t.Errorf("nmatch=0: %s, %v", fmtMatches(got), err)
	}
}

func TestExecNoSub(t *testing.T) {
	tn := mustCompile(t, "(a)(b)", ere|syntax.NoSub)
	if tn.NumTags() != 0 {
		t.Errorf("NumTags() = %d, want 0", tn.NumTags())
	}
	got, err := tn.Exec(context.Background(), []byte("xab"), 0, 3, 0)
	if err != nil {
		t.Fatalf("Exec error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Exec = %s, want no offsets", fmtMatches(got))
	}
	ok, err := tn.Match(context.Background(), []byte("xyz"), 0, 0)
	if ok || err != nil {
		t.Errorf("Match(xyz) = %v, %v; want false, nil", ok, err)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		pattern string
		flags   syntax.Flags
		want    syntax.ErrorCode
	}{
		{"(a", ere, syntax.EParen},
		{"a{256}", ere, syntax.BadBR},
		{"[a", ere, syntax.EBrack},
		{"*a", ere, syntax.BadRpt},
		{`\(a\)\2`, 0, syntax.ESubReg},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			_, err := Compile(tt.pattern, tt.flags, DefaultConfig())
			if got := syntax.CodeOf(err); got != tt.want {
				t.Errorf("Compile(%q) code = %v, want %v", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestCompileNodeLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxNodes = 200
	_, err := Compile("a{255}", ere, cfg)
	if got := syntax.CodeOf(err); got != syntax.ESpace {
		t.Fatalf("Compile(a{255}) with MaxNodes=200: %v, want REG_ESPACE", err)
	}
	var serr *syntax.Error
	if !errors.As(err, &serr) || serr.Pattern != "a{255}" {
		t.Errorf("error %v does not carry the pattern", err)
	}

	if _, err := Compile("a{25}", ere, cfg); err != nil {
		t.Errorf("Compile(a{25}) with MaxNodes=200: %v", err)
	}
}

func TestBacktrackFrameLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBacktrackFrames = 1
	tn, err := Compile(`\(a\|a\|a\)\1`, 0, cfg)
	if err != nil {
		t.Fatalf("Compile error: %v", err)
	}
	_, err = tn.Exec(context.Background(), []byte("aa"), 0, 2, 0)
	if !errors.Is(err, syntax.ESpace) {
		t.Errorf("Exec error = %v, want REG_ESPACE", err)
	}
}

func TestExecCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	input := []byte(strings.Repeat("x", 3*pollInterval))

	for _, tc := range []struct {
		pattern string
		flags   syntax.Flags
	}{{"x*y", ere}, {`\(x\)\1*y`, 0}} {
		t.Run(tc.pattern, func(t *testing.T) {
			tn := mustCompile(t, tc.pattern, tc.flags)
			_, err := tn.Exec(ctx, input, 0, 1, 0)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("Exec error = %v, want context.Canceled", err)
			}
			if n := tn.Stats().Cancellations; n != 1 {
				t.Errorf("Cancellations = %d, want 1", n)
			}
		})
	}
}

func TestMatcherSelection(t *testing.T) {
	if tn := mustCompile(t, "(a)b", ere); tn.HasBackrefs() {
		t.Error("(a)b: HasBackrefs() = true")
	}
	if tn := mustCompile(t, `\(a\)\1`, 0); !tn.HasBackrefs() {
		t.Error(`\(a\)\1: HasBackrefs() = false`)
	}
	if tn := mustCompile(t, `(a)\1`, ere); tn.HasBackrefs() {
		t.Error(`ERE (a)\1: HasBackrefs() = true`)
	}
}

func TestPrefilterEquivalence(t *testing.T) {
	patterns := []string{
		"hello|world", "(foo|bar)baz", "abc", `\<foo`, "a{2,3}b",
		"[xy]z", "^ab", "ab$", "(ab)+c", "(a|b)c",
	}
	inputs := []string{
		"", "hello", "say hello world", "foobaz barbaz", "xabc abc",
		"foofoo foo", "aaab ab aab", "yz xz", "ab\nab", "ababab", "bcac",
	}
	off := DefaultConfig()
	off.EnablePrefilter = false

	for _, pattern := range patterns {
		with := mustCompile(t, pattern, ere)
		without, err := Compile(pattern, ere, off)
		if err != nil {
			t.Fatalf("Compile(%q) error: %v", pattern, err)
		}
		if without.HasPrefilter() {
			t.Errorf("%q: prefilter built while disabled", pattern)
		}
		for _, input := range inputs {
			for start := 0; start <= len(input); start++ {
				a, errA := with.Exec(context.Background(), []byte(input), start, with.NumSubmatches(), 0)
				b, errB := without.Exec(context.Background(), []byte(input), start, without.NumSubmatches(), 0)
				if !errors.Is(errA, errB) || fmtMatches(a) != fmtMatches(b) {
					t.Errorf("%q on %q@%d: prefilter %s/%v, automaton %s/%v",
						pattern, input, start, fmtMatches(a), errA, fmtMatches(b), errB)
				}
			}
		}
	}
}

func TestHasPrefilter(t *testing.T) {
	tests := []struct {
		pattern string
		want    bool
	}{
		{"hello", true},
		{"hello|world", true},
		{"a*b", false},
		{"x|", false},
		{"[a-z]+", false},
		{"^foo", true},
	}
	for _, tt := range tests {
		if got := mustCompile(t, tt.pattern, ere).HasPrefilter(); got != tt.want {
			t.Errorf("HasPrefilter(%q) = %v, want %v", tt.pattern, got, tt.want)
		}
	}
}

func TestStats(t *testing.T) {
	tn := mustCompile(t, "hello", ere)
	ctx := context.Background()

	if ok, _ := tn.Match(ctx, []byte("world"), 0, 0); ok {
		t.Fatal("Match(world) = true")
	}
	if ok, _ := tn.Match(ctx, []byte("say hello"), 0, 0); !ok {
		t.Fatal("Match(say hello) = false")
	}
	st := tn.Stats()
	if st.PrefilterRejects != 1 {
		t.Errorf("PrefilterRejects = %d, want 1", st.PrefilterRejects)
	}
	if st.ParallelSearches != 1 {
		t.Errorf("ParallelSearches = %d, want 1", st.ParallelSearches)
	}
	if st.PrefilterSkips != 1 {
		t.Errorf("PrefilterSkips = %d, want 1", st.PrefilterSkips)
	}

	tn.ResetStats()
	if st := tn.Stats(); st != (Stats{}) {
		t.Errorf("Stats after reset = %+v", st)
	}
}

func TestConcurrentExec(t *testing.T) {
	tn := mustCompile(t, "(a+)(b+)", ere)
	br := mustCompile(t, `\(ab\)\1`, 0)

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			input := []byte(strings.Repeat("x", g) + "aabbb")
			for i := 0; i < 100; i++ {
				got, err := tn.Exec(context.Background(), input, 0, 3, 0)
				want := fmt.Sprintf("(%d,%d)(%d,%d)(%d,%d)", g, g+5, g, g+2, g+2, g+5)
				if err != nil || fmtMatches(got) != want {
					errs <- fmt.Sprintf("goroutine %d: %s, %v; want %s", g, fmtMatches(got), err, want)
					return
				}
				if ok, err := br.Match(context.Background(), []byte("abab"), 0, 0); !ok || err != nil {
					errs <- fmt.Sprintf("goroutine %d: backref Match = %v, %v", g, ok, err)
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestTagOrder(t *testing.T) {
	dirs := []TagDirection{TagMinimize, TagMaximize, TagMinimize}
	tests := []struct {
		t1, t2 []int
		want   bool
	}{
		{[]int{0, 5, 1}, []int{1, 5, 1}, true},
		{[]int{1, 5, 1}, []int{0, 5, 1}, false},
		{[]int{0, 6, 9}, []int{0, 5, 1}, true},
		{[]int{0, 5, 0}, []int{0, 5, 1}, true},
		{[]int{0, 5, 1}, []int{0, 5, 1}, false},
	}
	for _, tt := range tests {
		if got := tagOrder(3, dirs, tt.t1, tt.t2); got != tt.want {
			t.Errorf("tagOrder(%v, %v) = %v, want %v", tt.t1, tt.t2, got, tt.want)
		}
	}
	if TagMinimize.String() != "minimize" || TagMaximize.String() != "maximize" {
		t.Error("TagDirection.String mismatch")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"default", func(*Config) {}, ""},
		{"negative_nodes", func(c *Config) { c.MaxNodes = -1 }, "MaxNodes"},
		{"zero_stack", func(c *Config) { c.StackInitial = 0 }, "StackInitial"},
		{"small_max", func(c *Config) { c.StackMax = c.StackInitial - 1 }, "StackMax"},
		{"zero_increment", func(c *Config) { c.StackIncrement = 0 }, "StackIncrement"},
		{"zero_literals", func(c *Config) { c.MaxLiterals = 0 }, "MaxLiterals"},
		{"long_literals", func(c *Config) { c.MaxLiteralLen = 1000 }, "MaxLiteralLen"},
		{"class_size", func(c *Config) { c.MaxClassSize = 0 }, "MaxClassSize"},
		{"literals_ignored_without_prefilter", func(c *Config) {
			c.EnablePrefilter = false
			c.MaxLiterals = 0
		}, ""},
		{"frames", func(c *Config) { c.MaxBacktrackFrames = 0 }, "MaxBacktrackFrames"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var cerr *ConfigError
			if !errors.As(err, &cerr) || cerr.Field != tt.field {
				t.Fatalf("Validate() = %v, want error on %s", err, tt.field)
			}
			if _, err := Compile("a", ere, cfg); !errors.As(err, &cerr) {
				t.Errorf("Compile with invalid config: %v", err)
			}
		})
	}
}

func TestMatchLen(t *testing.T) {
	if n := (Match{So: 2, Eo: 5}).Len(); n != 3 {
		t.Errorf("Len = %d, want 3", n)
	}
	if n := (Match{So: -1, Eo: -1}).Len(); n != 0 {
		t.Errorf("unset Len = %d, want 0", n)
	}
}

func BenchmarkExec(b *testing.B) {
	input := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 100) + "hello world")
	for _, bm := range []struct {
		pattern string
		flags   syntax.Flags
	}{{"hello|world", ere}, {"[a-z]+ world", ere}, {`\(o\)\1`, 0}} {
		tn := mustCompile(b, bm.pattern, bm.flags)
		b.Run(bm.pattern, func(b *testing.B) {
			b.SetBytes(int64(len(input)))
			for i := 0; i < b.N; i++ {
				_, _ = tn.Exec(context.Background(), input, 0, tn.NumSubmatches(), 0)
			}
		})
	}
}
