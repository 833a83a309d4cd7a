package tre

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReplaceAll(t *testing.T) {
	tests := []struct {
		pattern string
		src     string
		repl    string
		want    string
	}{
		{"[0-9]+", "age: 42, id: 7", "N", "age: N, id: N"},
		{"([a-z]+)@([a-z]+)", "root@host", "$2 of $1", "host of root"},
		{"([a-z]+)@([a-z]+)", "root@host", "${2}x${1}", "hostxroot"},
		{"a", "banana", "$$", "b$n$n$"},
		{"a", "banana", "", "bnn"},
		{"(x)|a", "a", "[$1]", "[]"},
		{"a", "a", "$9", ""},
		{"a", "a", "${1", "${1"},
		{"a", "a", "$z", "$z"},
		{"b*", "abc", "-", "-a-c-"},
		{"x", "abc", "y", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.repl, func(t *testing.T) {
			re := MustCompile(tt.pattern, Extended)
			if got := re.ReplaceAllString(tt.src, tt.repl); got != tt.want {
				t.Errorf("ReplaceAllString(%q, %q) = %q, want %q", tt.src, tt.repl, got, tt.want)
			}
			if got := string(re.ReplaceAll([]byte(tt.src), []byte(tt.repl))); got != tt.want {
				t.Errorf("ReplaceAll(%q, %q) = %q, want %q", tt.src, tt.repl, got, tt.want)
			}
		})
	}
}

func TestReplaceAllLiteral(t *testing.T) {
	re := MustCompile("([a-z]+)", Extended)
	if got := re.ReplaceAllLiteralString("ab 12 cd", "$1"); got != "$1 12 $1" {
		t.Errorf("ReplaceAllLiteralString = %q", got)
	}
	if got := re.ReplaceAllLiteral([]byte("ab"), nil); got == nil || len(got) != 0 {
		t.Errorf("ReplaceAllLiteral with empty replacement = %#v, want empty non-nil", got)
	}
}

func TestReplaceAllFunc(t *testing.T) {
	re := MustCompile("[a-z]+", Extended)
	got := re.ReplaceAllStringFunc("go is fun 42", strings.ToUpper)
	if got != "GO IS FUN 42" {
		t.Errorf("ReplaceAllStringFunc = %q", got)
	}

	gotb := re.ReplaceAllFunc([]byte("ab cd"), func(b []byte) []byte {
		return append([]byte{'<'}, append(b, '>')...)
	})
	if string(gotb) != "<ab> <cd>" {
		t.Errorf("ReplaceAllFunc = %q", gotb)
	}
}

func TestExpand(t *testing.T) {
	re := MustCompile(`\([a-z]*\)=\([0-9]*\)`, 0)
	src := []byte("key=42")
	m := re.FindSubmatchIndex(src)
	got := re.Expand([]byte("> "), []byte("$2 <- $1"), src, m)
	if string(got) != "> 42 <- key" {
		t.Errorf("Expand = %q", got)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		pattern string
		s       string
		n       int
		want    []string
	}{
		{",", "a,b,c", -1, []string{"a", "b", "c"}},
		{",", "a,b,c", 2, []string{"a", "b,c"}},
		{",", "a,b,c", 0, nil},
		{",", "", -1, []string{""}},
		{"[ ]+", "a  b   c", -1, []string{"a", "b", "c"}},
		{"x*", "axbc", -1, []string{"a", "b", "c"}},
		{"", "abc", -1, []string{"a", "b", "c"}},
		{",", "abc", -1, []string{"abc"}},
		{",", ",a,", -1, []string{"", "a", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.s, func(t *testing.T) {
			re := MustCompile(tt.pattern, Extended)
			if diff := cmp.Diff(tt.want, re.Split(tt.s, tt.n)); diff != "" {
				t.Errorf("Split(%q, %d) mismatch (-want +got):\n%s", tt.s, tt.n, diff)
			}
		})
	}
}
