package tnfa

import (
	"context"
	"errors"

	"github.com/coregx/tre/internal/stack"
	"github.com/coregx/tre/syntax"
)

// ExecFlags modify a single search. The values match the eflags bits of the
// C <regex.h> interface.
type ExecFlags int

const (
	// NotBOL: the start of input is not the beginning of a line.
	NotBOL ExecFlags = 1 << iota
	// NotEOL: the end of input is not the end of a line.
	NotEOL
)

// pollInterval is the number of matcher steps between context checks.
const pollInterval = 4096

// Exec searches input for the leftmost-longest match starting at or after
// byte offset start. Characters before start still count for assertions
// such as \b and ^.
//
// On success the result holds nmatch entries: the whole match followed by
// the capture groups, with unset groups as {-1, -1}. Patterns compiled with
// NoSub return an empty slice. When there is no match the error is
// syntax.NoMatch. A search that exceeds MaxBacktrackFrames fails with
// syntax.ESpace; a cancelled ctx returns ctx.Err().
func (t *TNFA) Exec(ctx context.Context, input []byte, start, nmatch int, eflags ExecFlags) ([]Match, error) {
	if start < 0 || start > len(input) {
		return nil, syntax.NoMatch
	}
	if t.flags&syntax.NoSub != 0 || nmatch < 0 {
		nmatch = 0
	}

	if t.prefilter != nil && t.prefilter.Find(input, start) < 0 {
		t.stats.rejects.Add(1)
		return nil, syntax.NoMatch
	}

	var matchTags []int
	if t.numTags > 0 && nmatch > 0 {
		matchTags = make([]int, t.numTags)
	}

	eo, err := t.matcher.run(ctx, t, input, start, matchTags, eflags)
	if err != nil {
		if errors.Is(err, stack.ErrSpace) {
			return nil, syntax.ESpace
		}
		return nil, err
	}
	if eo < 0 {
		return nil, syntax.NoMatch
	}

	pmatch := make([]Match, nmatch)
	t.fillPmatch(pmatch, t.flags, matchTags, eo)
	return pmatch, nil
}

// Match reports whether input contains a match at or after start.
func (t *TNFA) Match(ctx context.Context, input []byte, start int, eflags ExecFlags) (bool, error) {
	_, err := t.Exec(ctx, input, start, 0, eflags)
	if errors.Is(err, syntax.NoMatch) {
		return false, nil
	}
	return err == nil, err
}

// checkContext returns the context error and counts the cancellation.
func (t *TNFA) checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		t.stats.cancellations.Add(1)
		return err
	}
	return nil
}
