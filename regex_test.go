package tre

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/tre/syntax"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		pattern string
		flags   Flags
		wantErr syntax.ErrorCode
	}{
		{"abc", Extended, syntax.OK},
		{"a(b|c)*d", Extended, syntax.OK},
		{`\(a\)\1`, 0, syntax.OK},
		{"(a", Extended, syntax.EParen},
		{"a{1,2", Extended, syntax.BadBR},
		{"[[:foo:]]", Extended, syntax.ECtype},
		{"[[.a.]]", Extended, syntax.ECollate},
		{"[z-a]", Extended, syntax.ERange},
		{`a\`, Extended, syntax.EEscape},
		{`\2`, 0, syntax.ESubReg},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re, err := Compile(tt.pattern, tt.flags)
			if got := syntax.CodeOf(err); got != tt.wantErr {
				t.Fatalf("Compile(%q) = %v, want %v", tt.pattern, err, tt.wantErr)
			}
			if err == nil && re.String() != tt.pattern {
				t.Errorf("String() = %q, want %q", re.String(), tt.pattern)
			}
			if err != nil && re != nil {
				t.Error("failed Compile returned a Regex")
			}
		})
	}
}

func TestMustCompilePanicFormat(t *testing.T) {
	var msg string
	func() {
		defer func() {
			if r := recover(); r != nil {
				msg = r.(string)
			}
		}()
		MustCompile("[invalid", Extended)
	}()

	if want := "tre: Compile(`[invalid`): Missing ']'"; msg != want {
		t.Errorf("panic = %q, want %q", msg, want)
	}
}

func TestCompileWithConfig(t *testing.T) {
	config := DefaultConfig()
	config.MaxLiterals = 0
	_, err := CompileWithConfig("abc", Extended, config)
	if err == nil || !strings.HasPrefix(err.Error(), "tre: invalid config: ") {
		t.Errorf("invalid config error = %v", err)
	}

	config = DefaultConfig()
	config.MaxNodes = 100
	_, err = CompileWithConfig("(a{255}){255}", Extended, config)
	if !errors.Is(err, syntax.ESpace) {
		t.Errorf("node ceiling error = %v, want REG_ESPACE", err)
	}
}

func TestFind(t *testing.T) {
	tests := []struct {
		pattern string
		flags   Flags
		input   string
		want    []int
	}{
		{"a|ab", Extended, "abc", []int{0, 2}},
		{"a*", Extended, "aaa", []int{0, 3}},
		{"a*", Extended, "baaa", []int{0, 0}},
		{"[^a]+", Extended, "aabcda", []int{2, 5}},
		{"ABC", Extended | ICase, "xaBcx", []int{1, 4}},
		{"^$", Extended, "", []int{0, 0}},
		{"^$", Extended, "x", nil},
		{"a^b", 0, "a^b", []int{0, 3}},
		{"a.c", Extended, "a\nc", []int{0, 3}},
		{"a.c", Extended | Newline, "a\nc", nil},
		{"é+", Extended, "caféé!", []int{3, 7}},
		{"x", Extended, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.input, func(t *testing.T) {
			re := MustCompile(tt.pattern, tt.flags)
			if diff := cmp.Diff(tt.want, re.FindStringIndex(tt.input)); diff != "" {
				t.Errorf("FindStringIndex mismatch (-want +got):\n%s", diff)
			}
			if got := re.MatchString(tt.input); got != (tt.want != nil) {
				t.Errorf("MatchString = %v", got)
			}
			b := re.Find([]byte(tt.input))
			if tt.want == nil {
				if b != nil {
					t.Errorf("Find = %q, want nil", b)
				}
			} else if string(b) != tt.input[tt.want[0]:tt.want[1]] {
				t.Errorf("Find = %q", b)
			}
		})
	}
}

func TestFindSubmatch(t *testing.T) {
	tests := []struct {
		pattern string
		flags   Flags
		input   string
		want    []int
	}{
		{"(a|ab)(c|bcd)", Extended, "abcd", []int{0, 4, 0, 1, 1, 4}},
		{"(a+)(b+)", Extended, "xaabbb", []int{1, 6, 1, 3, 3, 6}},
		{"(a)|b", Extended, "b", []int{0, 1, -1, -1}},
		{"((a)|b)+", Extended, "ab", []int{0, 2, 1, 2, -1, -1}},
		{`\(a*\)\1`, 0, "aaaa", []int{0, 4, 0, 2}},
		{`\(a*\)\1`, 0, "aaa", []int{0, 2, 0, 1}},
		{`(a)\1`, Extended, "aa a1", []int{3, 5, 3, 4}},
		{`\(ab*\)c\1`, 0, "abbcabb", []int{0, 7, 0, 3}},
		{"(a){2}", Extended, "aa", []int{0, 2, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re := MustCompile(tt.pattern, tt.flags)
			got := re.FindStringSubmatchIndex(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FindStringSubmatchIndex(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
			if n := len(re.FindSubmatch([]byte(tt.input))); n != re.NumSubexp()+1 {
				t.Errorf("FindSubmatch returned %d groups, want %d", n, re.NumSubexp()+1)
			}
		})
	}
}

func TestSubmatchContainment(t *testing.T) {
	// Every reported group lies inside each group that encloses it.
	re := MustCompile("((a)|(b))*(c)", Extended)
	for _, input := range []string{"c", "abc", "bac", "aac", "xbbbc"} {
		loc := re.FindStringSubmatchIndex(input)
		if loc == nil {
			t.Fatalf("no match on %q", input)
		}
		for _, child := range []int{2, 3} {
			so, eo := loc[2*child], loc[2*child+1]
			if so < 0 {
				continue
			}
			if so < loc[2] || eo > loc[3] {
				t.Errorf("%q: group %d %v outside group 1 %v", input, child, loc[2*child:2*child+2], loc[2:4])
			}
		}
	}
}

func TestFindAll(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    [][]int
	}{
		{"[0-9]+", "1 22 333", [][]int{{0, 1}, {2, 4}, {5, 8}}},
		{"a*", "baaa", [][]int{{0, 0}, {1, 4}}},
		{"", "ab", [][]int{{0, 0}, {1, 1}, {2, 2}}},
		{"^a", "aaa", [][]int{{0, 1}}},
		{`\<a`, "a ba a", [][]int{{0, 1}, {5, 6}}},
		{`\ba`, "aa a", [][]int{{0, 1}, {3, 4}}},
		{"x", "abc", nil},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re := MustCompile(tt.pattern, Extended)
			if diff := cmp.Diff(tt.want, re.FindAllStringIndex(tt.input, -1)); diff != "" {
				t.Errorf("FindAllStringIndex(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
			if got := re.CountString(tt.input, -1); got != len(tt.want) {
				t.Errorf("CountString = %d, want %d", got, len(tt.want))
			}
		})
	}

	re := MustCompile("[0-9]", Extended)
	if got := re.FindAllString("1234", 2); !cmp.Equal(got, []string{"1", "2"}) {
		t.Errorf("FindAllString(n=2) = %q", got)
	}
	if got := re.FindAllString("1234", 0); got != nil {
		t.Errorf("FindAllString(n=0) = %q, want nil", got)
	}
}

func TestFindAllSubmatch(t *testing.T) {
	re := MustCompile("([a-z])=([0-9])", Extended)
	got := re.FindAllStringSubmatch("a=1, b=2", -1)
	want := [][]string{{"a=1", "a", "1"}, {"b=2", "b", "2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FindAllStringSubmatch mismatch (-want +got):\n%s", diff)
	}

	idx := re.FindAllStringSubmatchIndex("a=1, b=2", -1)
	wantIdx := [][]int{{0, 3, 0, 1, 2, 3}, {5, 8, 5, 6, 7, 8}}
	if diff := cmp.Diff(wantIdx, idx); diff != "" {
		t.Errorf("FindAllStringSubmatchIndex mismatch (-want +got):\n%s", diff)
	}
}

func TestNoSub(t *testing.T) {
	re := MustCompile("(a)(b)", Extended|NoSub)
	if !re.MatchString("xab") {
		t.Error("MatchString = false")
	}
	if loc := re.FindStringIndex("xab"); loc != nil {
		t.Errorf("FindStringIndex = %v, want nil for NoSub", loc)
	}
	if re.NumSubexp() != 2 {
		t.Errorf("NumSubexp = %d, want 2", re.NumSubexp())
	}
}

func TestExecContext(t *testing.T) {
	re := MustCompile(`\<(b+)`, Extended)
	input := []byte("abb bbb")

	m, err := re.ExecContext(context.Background(), input, 1, 2, 0)
	if err != nil {
		t.Fatalf("ExecContext error: %v", err)
	}
	if diff := cmp.Diff([]Match{{So: 4, Eo: 7}, {So: 4, Eo: 7}}, m); diff != "" {
		t.Errorf("ExecContext mismatch (-want +got):\n%s", diff)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := MustCompile(`\(x*\)\1*y`, 0)
	_, err = slow.ExecContext(ctx, []byte(strings.Repeat("x", 20000)), 0, 1, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled ExecContext error = %v", err)
	}
	if slow.Stats().Cancellations != 1 {
		t.Errorf("Cancellations = %d, want 1", slow.Stats().Cancellations)
	}
}

func TestStats(t *testing.T) {
	re := MustCompile("needle", Extended)
	re.MatchString("haystack")
	re.MatchString("a needle")
	st := re.Stats()
	if st.PrefilterRejects != 1 || st.ParallelSearches != 1 {
		t.Errorf("Stats = %+v", st)
	}
	re.ResetStats()
	if st := re.Stats(); st != (Stats{}) {
		t.Errorf("Stats after reset = %+v", st)
	}

	br := MustCompile(`\(a\)\1`, 0)
	br.MatchString("xaa")
	if br.Stats().BacktrackSearches != 1 {
		t.Errorf("BacktrackSearches = %d, want 1", br.Stats().BacktrackSearches)
	}
}

func TestQuoteMeta(t *testing.T) {
	tests := []string{
		"abc", "a.b", `\`, "1+1=(2)", "[x]", "a{2}", "^$", "a|b", "*?", "é.",
	}
	for _, s := range tests {
		q := QuoteMeta(s)
		for _, flags := range []Flags{0, Extended} {
			re, err := Compile(q, flags)
			if err != nil {
				t.Errorf("QuoteMeta(%q) = %q does not compile with %v: %v", s, q, flags, err)
				continue
			}
			if got := re.FindStringIndex("<" + s + ">"); !cmp.Equal(got, []int{1, 1 + len(s)}) {
				t.Errorf("QuoteMeta(%q) = %q with %v matches %v", s, q, flags, got)
			}
		}
	}
}

func TestConcurrentUse(t *testing.T) {
	patterns := []*Regex{
		MustCompile("(a|ab)(c|bcd)", Extended),
		MustCompile(`\(a*\)\1`, 0),
		MustCompile("hello|world", Extended),
	}
	inputs := []string{"xabcd", "aaaa", "say world"}
	wants := make([][]int, len(patterns))
	for i, re := range patterns {
		wants[i] = re.FindStringSubmatchIndex(inputs[i])
	}

	const goroutines = 16
	const iterations = 200
	var wg sync.WaitGroup
	var failures atomic.Int64
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				k := i % len(patterns)
				if !cmp.Equal(patterns[k].FindStringSubmatchIndex(inputs[k]), wants[k]) {
					failures.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	if n := failures.Load(); n != 0 {
		t.Errorf("%d concurrent searches disagreed with the sequential result", n)
	}
}

func BenchmarkFind(b *testing.B) {
	input := strings.Repeat("the quick brown fox jumps over the lazy dog ", 200) + "user@example.com"
	benchmarks := []struct {
		name    string
		pattern string
		flags   Flags
	}{
		{"literal", "example", Extended},
		{"alternation", "fox|dog|cat", Extended},
		{"class", "[a-z]+@[a-z]+[.]com", Extended},
		{"backref", `\(o\)\1`, 0},
	}
	for _, bm := range benchmarks {
		re := MustCompile(bm.pattern, bm.flags)
		b.Run(bm.name, func(b *testing.B) {
			b.SetBytes(int64(len(input)))
			for i := 0; i < b.N; i++ {
				re.FindStringIndex(input)
			}
		})
	}
}
