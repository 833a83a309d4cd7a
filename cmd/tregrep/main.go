// Command tregrep prints lines that match a POSIX regular expression.
//
// Usage:
//
//	tregrep [-E] [-i] [-x] [-v] [-c] [-n] [-o] [-stats] pattern [file...]
//
// Patterns are basic regular expressions unless -E is given. Input is read
// from standard input when no file is named. The exit status is 0 when a line
// was selected, 1 when none was, and 2 on error.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/coregx/tre"
)

const (
	exitMatch   = 0
	exitNoMatch = 1
	exitError   = 2
)

// maxLine bounds a single input line.
const maxLine = 16 << 20

type options struct {
	extended bool
	icase    bool
	line     bool
	invert   bool
	count    bool
	number   bool
	only     bool
	stats    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "tregrep: ", 0)

	var opts options
	fs := flag.NewFlagSet("tregrep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.extended, "E", false, "use extended regular expressions")
	fs.BoolVar(&opts.icase, "i", false, "ignore case")
	fs.BoolVar(&opts.line, "x", false, "select only matches of the whole line")
	fs.BoolVar(&opts.invert, "v", false, "select non-matching lines")
	fs.BoolVar(&opts.count, "c", false, "print only a count of selected lines")
	fs.BoolVar(&opts.number, "n", false, "prefix lines with their line number")
	fs.BoolVar(&opts.only, "o", false, "print only the matched parts of lines")
	fs.BoolVar(&opts.stats, "stats", false, "print search counters to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: tregrep [-E] [-i] [-x] [-v] [-c] [-n] [-o] [-stats] pattern [file...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitMatch
		}
		return exitError
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return exitError
	}

	var flags tre.Flags
	if opts.extended {
		flags |= tre.Extended
	}
	if opts.icase {
		flags |= tre.ICase
	}
	re, err := tre.Compile(fs.Arg(0), flags)
	if err != nil {
		logger.Print(err)
		return exitError
	}

	g := &grep{re: re, opts: opts, out: bufio.NewWriter(stdout)}
	defer g.out.Flush()

	files := fs.Args()[1:]
	g.prefix = len(files) > 1

	status := exitNoMatch
	if len(files) == 0 {
		files = []string{"-"}
	}
	for _, name := range files {
		selected, err := g.file(name, stdin)
		if err != nil {
			logger.Print(err)
			status = exitError
			continue
		}
		if selected && status != exitError {
			status = exitMatch
		}
	}

	if opts.stats {
		st := re.Stats()
		logger.Printf("parallel=%d backtrack=%d prefilter_skips=%d prefilter_rejects=%d",
			st.ParallelSearches, st.BacktrackSearches, st.PrefilterSkips, st.PrefilterRejects)
	}
	return status
}

type grep struct {
	re     *tre.Regex
	opts   options
	out    *bufio.Writer
	prefix bool
}

// file greps one input; "-" is stdin. It reports whether any line was
// selected.
func (g *grep) file(name string, stdin io.Reader) (bool, error) {
	r := stdin
	label := "(standard input)"
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return false, err
		}
		defer f.Close()
		r = f
		label = name
	}

	n, err := g.scan(r, label)
	if err != nil {
		return n > 0, fmt.Errorf("%s: %w", label, err)
	}
	if g.opts.count {
		if g.prefix {
			fmt.Fprintf(g.out, "%s:", label)
		}
		fmt.Fprintln(g.out, n)
	}
	return n > 0, nil
}

// scan writes the selected lines of r and returns how many were selected.
func (g *grep) scan(r io.Reader, label string) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)

	selected := 0
	for lineno := 1; sc.Scan(); lineno++ {
		line := sc.Bytes()
		if g.matches(line) == g.opts.invert {
			continue
		}
		selected++
		if g.opts.count {
			continue
		}

		if g.opts.only && !g.opts.invert {
			for _, m := range g.re.FindAllIndex(line, -1) {
				if m[0] == m[1] {
					continue
				}
				g.header(label, lineno)
				g.out.Write(line[m[0]:m[1]])
				g.out.WriteByte('\n')
			}
			continue
		}
		g.header(label, lineno)
		g.out.Write(line)
		g.out.WriteByte('\n')
	}
	return selected, sc.Err()
}

func (g *grep) matches(line []byte) bool {
	if !g.opts.line {
		return g.re.Match(line)
	}
	// The leftmost-longest match covers the whole line whenever the whole
	// line matches.
	loc := g.re.FindIndex(line)
	return loc != nil && loc[0] == 0 && loc[1] == len(line)
}

func (g *grep) header(label string, lineno int) {
	if g.prefix {
		g.out.WriteString(label)
		g.out.WriteByte(':')
	}
	if g.opts.number {
		fmt.Fprintf(g.out, "%d:", lineno)
	}
}
