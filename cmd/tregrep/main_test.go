package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const input = `alpha 1
beta 22
gamma
Alpha beta
`

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantOut    string
		wantStatus int
	}{
		{"bre", []string{"a\\(l\\)"}, "alpha 1\n", exitMatch},
		{"ere", []string{"-E", "[0-9]+$"}, "alpha 1\nbeta 22\n", exitMatch},
		{"icase", []string{"-i", "^alpha"}, "alpha 1\nAlpha beta\n", exitMatch},
		{"invert", []string{"-v", "beta"}, "alpha 1\ngamma\n", exitMatch},
		{"count", []string{"-c", "a"}, "4\n", exitMatch},
		{"number", []string{"-n", "gamma"}, "3:gamma\n", exitMatch},
		{"only", []string{"-o", "-E", "[0-9]+"}, "1\n22\n", exitMatch},
		{"whole line", []string{"-x", "-E", "[a-z]+"}, "gamma\n", exitMatch},
		{"no match", []string{"delta"}, "", exitNoMatch},
		{"count no match", []string{"-c", "delta"}, "0\n", exitNoMatch},
		{"backref", []string{"-o", "\\(m\\)\\1"}, "mm\n", exitMatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			status := run(tt.args, strings.NewReader(input), &stdout, &stderr)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d (stderr %q)", status, tt.wantStatus, stderr.String())
			}
			if got := stdout.String(); got != tt.wantOut {
				t.Errorf("stdout = %q, want %q", got, tt.wantOut)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if status := run([]string{"-E", "(a"}, strings.NewReader(""), &stdout, &stderr); status != exitError {
		t.Errorf("bad pattern status = %d, want %d", status, exitError)
	}
	if got := stderr.String(); !strings.HasPrefix(got, "tregrep: ") || !strings.Contains(got, "Missing ')'") {
		t.Errorf("stderr = %q", got)
	}

	stderr.Reset()
	if status := run(nil, strings.NewReader(""), &stdout, &stderr); status != exitError {
		t.Errorf("missing pattern status = %d, want %d", status, exitError)
	}
	if !strings.Contains(stderr.String(), "usage: tregrep") {
		t.Errorf("stderr = %q, want usage", stderr.String())
	}

	stderr.Reset()
	missing := filepath.Join(t.TempDir(), "missing.txt")
	if status := run([]string{"a", missing}, strings.NewReader(""), &stdout, &stderr); status != exitError {
		t.Errorf("missing file status = %d, want %d", status, exitError)
	}
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	one := filepath.Join(dir, "one.txt")
	two := filepath.Join(dir, "two.txt")
	if err := os.WriteFile(one, []byte("foo\nbar\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(two, []byte("baz\nfoo bar\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	status := run([]string{"-n", "foo", one, two}, strings.NewReader(""), &stdout, &stderr)
	if status != exitMatch {
		t.Fatalf("status = %d (stderr %q)", status, stderr.String())
	}
	want := one + ":1:foo\n" + two + ":2:foo bar\n"
	if got := stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}

	stdout.Reset()
	run([]string{"-c", "ba", one, two}, strings.NewReader(""), &stdout, &stderr)
	want = one + ":1\n" + two + ":2\n"
	if got := stdout.String(); got != want {
		t.Errorf("count stdout = %q, want %q", got, want)
	}
}

func TestRunStats(t *testing.T) {
	var stdout, stderr bytes.Buffer
	run([]string{"-stats", "beta"}, strings.NewReader(input), &stdout, &stderr)
	if !strings.Contains(stderr.String(), "tregrep: parallel=") {
		t.Errorf("stderr = %q, want stats line", stderr.String())
	}
}
